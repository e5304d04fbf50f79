package router

import (
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/config"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/handler"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/middleware"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/repository"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	cashRepo := repository.NewCashRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	overrideSvc := service.NewOverrideService(overrideRepo, time.Duration(cfg.OverrideCodeExpirationSeconds)*time.Second)
	cashSvc := service.NewCashService(cashRepo, overrideSvc, service.CashGateConfig{
		RequireOverrideForSupply:     cfg.RequireOverrideForSupply,
		RequireOverrideForWithdrawal: cfg.RequireOverrideForWithdrawal,
	})
	saleSvc := service.NewSaleService(saleRepo, cashRepo, productRepo, customerRepo, overrideSvc)
	productSvc := service.NewProductService(productRepo)
	customerSvc := service.NewCustomerService(customerRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	cashH := handler.NewCashHandler(cashSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	overridesH := handler.NewOverridesHandler(overrideSvc)
	productsH := handler.NewProductsHandler(productSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	priceH := handler.NewPriceCheckHandler(productRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/price/:barcode", priceH.GetByBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Override codes — admins mint, everyone spends
		v1.POST("/overrides", adminOnly, overridesH.Issue)

		cash := v1.Group("/cash")
		{
			cash.GET("/registers", anyRole, cashH.ListRegisters)
			cash.GET("/registers/:id/session", anyRole, cashH.GetOpenSession)
			cash.POST("/open", anyRole, cashH.OpenSession)
			cash.POST("/close", anyRole, cashH.CloseSession)
			cash.POST("/movements", anyRole, cashH.CreateMovement)
			cash.GET("/sessions/:sessionId/movements", anyRole, cashH.ListMovements)
			cash.POST("/reopen/:sessionId", adminOnly, cashH.ReopenSession)
		}

		sales := v1.Group("/sales", anyRole)
		{
			sales.POST("", salesH.Create)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/balance", salesH.GetBalance)
			sales.POST("/:id/items", salesH.AddItem)
			sales.PUT("/:id/items/:itemId", salesH.UpdateItem)
			sales.DELETE("/:id/items/:itemId", salesH.RemoveItem)
			sales.POST("/:id/payments", salesH.AddPayment)
			sales.POST("/:id/finalize", salesH.Finalize)
			sales.POST("/:id/cancel", salesH.Cancel)
		}

		// Products — everyone reads, admins write
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		products := v1.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		customers := v1.Group("/customers", anyRole)
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	return r
}
