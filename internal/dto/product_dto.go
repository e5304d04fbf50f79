package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string           `json:"name"        validate:"required,min=2,max=200"`
	Description *string          `json:"description"`
	Sku         *string          `json:"sku"         validate:"omitempty,max=60"`
	Barcode     *string          `json:"barcode"     validate:"omitempty,max=30"`
	Unit        string           `json:"unit"        validate:"omitempty,max=20"`
	CostPrice   decimal.Decimal  `json:"cost_price"  validate:"required"`
	SalePrice   decimal.Decimal  `json:"sale_price"  validate:"required"`
}

type UpdateProductRequest struct {
	Name        string           `json:"name"        validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description"`
	Sku         *string          `json:"sku"         validate:"omitempty,max=60"`
	Barcode     *string          `json:"barcode"     validate:"omitempty,max=30"`
	Unit        string           `json:"unit"        validate:"omitempty,max=20"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	IsActive    *bool            `json:"is_active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Sku         *string         `json:"sku"`
	Barcode     *string         `json:"barcode"`
	Unit        string          `json:"unit"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	IsActive    bool            `json:"is_active"`
}

func FromProduct(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Sku:         p.Sku,
		Barcode:     p.Barcode,
		Unit:        p.Unit,
		CostPrice:   p.CostPrice,
		SalePrice:   p.SalePrice,
		IsActive:    p.IsActive,
	}
}

// PriceCheckResponse is the payload served by the barcode price lookup,
// cached in Redis with a short TTL.
type PriceCheckResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Unit      string          `json:"unit"`
}
