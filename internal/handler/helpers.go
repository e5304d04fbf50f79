package handler

import (
	"net/http"
	"reflect"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/apierror"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeError maps a business error to its HTTP status. Anything that is not
// a BusinessError is deferred to the ErrorHandler middleware as a 500.
func writeError(c *gin.Context, err error) {
	var status int
	switch apierror.KindOf(err) {
	case apierror.KindValidation:
		status = http.StatusBadRequest
	case apierror.KindNotFound:
		status = http.StatusNotFound
	case apierror.KindConflict:
		status = http.StatusConflict
	case apierror.KindUnauthorized:
		status = http.StatusForbidden
	default:
		_ = c.Error(err)
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// parseUUIDParam parses the named path parameter, writing a 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" is not a valid uuid"))
		return uuid.Nil, false
	}
	return id, true
}

// actor extracts the caller's identity from the JWT claims.
func actor(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id, claims.IsAdmin()
}
