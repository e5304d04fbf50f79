package dto

import (
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSaleRequest struct {
	CashRegisterID string `json:"cash_register_id" validate:"required,uuid"`
	CustomerID     string `json:"customer_id" validate:"required,uuid"`
}

type AddSaleItemRequest struct {
	ProductID      string           `json:"product_id" validate:"required,uuid"`
	Quantity       decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPriceFinal *decimal.Decimal `json:"unit_price_final"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	OverrideCode   *string          `json:"override_code"`
}

type UpdateSaleItemRequest struct {
	Quantity       decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPriceFinal *decimal.Decimal `json:"unit_price_final"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	OverrideCode   *string          `json:"override_code"`
}

type AddSalePaymentRequest struct {
	Method            string           `json:"method" validate:"required"`
	Amount            decimal.Decimal  `json:"amount" validate:"required"`
	AmountReceived    *decimal.Decimal `json:"amount_received"`
	AuthorizationCode *string          `json:"authorization_code"`
}

type FinalizeSaleRequest struct {
	SaleDiscountAmount *decimal.Decimal `json:"sale_discount_amount"`
	OverrideCode       *string          `json:"override_code"`
}

type CancelSaleRequest struct {
	Reason       string  `json:"reason" validate:"required"`
	OverrideCode *string `json:"override_code"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPriceOriginal decimal.Decimal `json:"unit_price_original"`
	UnitPriceFinal    decimal.Decimal `json:"unit_price_final"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	LineTotalAmount   decimal.Decimal `json:"line_total_amount"`
	CreatedAt         time.Time       `json:"created_at"`
}

func FromSaleItem(i *model.SaleItem) SaleItemResponse {
	resp := SaleItemResponse{
		ID:                i.ID.String(),
		ProductID:         i.ProductID.String(),
		Quantity:          i.Quantity,
		UnitPriceOriginal: i.UnitPriceOriginal,
		UnitPriceFinal:    i.UnitPriceFinal,
		DiscountAmount:    i.DiscountAmount,
		LineTotalAmount:   i.LineTotalAmount,
		CreatedAt:         i.CreatedAt,
	}
	if i.Product != nil {
		resp.ProductName = i.Product.Name
	}
	return resp
}

type SalePaymentResponse struct {
	ID                string           `json:"id"`
	Method            string           `json:"method"`
	Amount            decimal.Decimal  `json:"amount"`
	AmountReceived    *decimal.Decimal `json:"amount_received"`
	ChangeGiven       *decimal.Decimal `json:"change_given"`
	AuthorizationCode *string          `json:"authorization_code"`
	CreatedAt         time.Time        `json:"created_at"`
}

func FromSalePayment(p *model.SalePayment) SalePaymentResponse {
	return SalePaymentResponse{
		ID:                p.ID.String(),
		Method:            string(p.Method),
		Amount:            p.Amount,
		AmountReceived:    p.AmountReceived,
		ChangeGiven:       p.ChangeGiven,
		AuthorizationCode: p.AuthorizationCode,
		CreatedAt:         p.CreatedAt,
	}
}

type SaleResponse struct {
	ID                      string          `json:"id"`
	Code                    int             `json:"code"`
	Status                  string          `json:"status"`
	CashRegisterID          string          `json:"cash_register_id"`
	CashSessionID           string          `json:"cash_session_id"`
	CustomerID              string          `json:"customer_id"`
	SubtotalAmount          decimal.Decimal `json:"subtotal_amount"`
	ItemDiscountTotalAmount decimal.Decimal `json:"item_discount_total_amount"`
	SaleDiscountAmount      decimal.Decimal `json:"sale_discount_amount"`
	TotalAmount             decimal.Decimal `json:"total_amount"`
	PaidAmount              decimal.Decimal `json:"paid_amount"`
	CancelReason            *string         `json:"cancel_reason,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	FinalizedAt             *time.Time      `json:"finalized_at"`
	CancelledAt             *time.Time      `json:"cancelled_at"`

	Items    []SaleItemResponse    `json:"items,omitempty"`
	Payments []SalePaymentResponse `json:"payments,omitempty"`
}

func FromSale(s *model.Sale) SaleResponse {
	resp := SaleResponse{
		ID:                      s.ID.String(),
		Code:                    s.Code,
		Status:                  string(s.Status),
		CashRegisterID:          s.CashRegisterID.String(),
		CashSessionID:           s.CashSessionID.String(),
		CustomerID:              s.CustomerID.String(),
		SubtotalAmount:          s.SubtotalAmount,
		ItemDiscountTotalAmount: s.ItemDiscountTotalAmount,
		SaleDiscountAmount:      s.SaleDiscountAmount,
		TotalAmount:             s.TotalAmount,
		PaidAmount:              s.PaidAmount,
		CancelReason:            s.CancelReason,
		CreatedAt:               s.CreatedAt,
		FinalizedAt:             s.FinalizedAt,
		CancelledAt:             s.CancelledAt,
	}
	for idx := range s.Items {
		resp.Items = append(resp.Items, FromSaleItem(&s.Items[idx]))
	}
	for idx := range s.Payments {
		resp.Payments = append(resp.Payments, FromSalePayment(&s.Payments[idx]))
	}
	return resp
}

type SaleBalanceResponse struct {
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
}
