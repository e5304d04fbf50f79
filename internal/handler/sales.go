package handler

import (
	"net/http"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/dto"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/service"

	"github.com/gin-gonic/gin"
)

// SalesHandler exposes the sale lifecycle endpoints. Every mutation returns
// the updated sale with freshly recomputed totals and derived status.
type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, _ := actor(c)
	sale, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromSale(sale))
}

func (h *SalesHandler) AddItem(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddSaleItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, isAdmin := actor(c)
	sale, err := h.svc.AddItem(c.Request.Context(), userID, isAdmin, saleID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromSale(sale))
}

func (h *SalesHandler) UpdateItem(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateSaleItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, isAdmin := actor(c)
	sale, err := h.svc.UpdateItem(c.Request.Context(), userID, isAdmin, saleID, itemID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSale(sale))
}

func (h *SalesHandler) RemoveItem(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	userID, _ := actor(c)
	sale, err := h.svc.RemoveItem(c.Request.Context(), userID, saleID, itemID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSale(sale))
}

func (h *SalesHandler) AddPayment(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddSalePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, _ := actor(c)
	sale, err := h.svc.AddPayment(c.Request.Context(), userID, saleID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromSale(sale))
}

func (h *SalesHandler) Finalize(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.FinalizeSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, isAdmin := actor(c)
	sale, err := h.svc.Finalize(c.Request.Context(), userID, isAdmin, saleID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSale(sale))
}

func (h *SalesHandler) Cancel(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancelSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, isAdmin := actor(c)
	sale, err := h.svc.Cancel(c.Request.Context(), userID, isAdmin, saleID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSale(sale))
}

func (h *SalesHandler) Get(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.svc.GetDetail(c.Request.Context(), saleID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSale(sale))
}

func (h *SalesHandler) GetBalance(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	balance, err := h.svc.GetBalance(c.Request.Context(), saleID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}
