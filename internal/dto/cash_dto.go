package dto

import (
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	CashRegisterName   string          `json:"cash_register_name" validate:"required"`
	Location           *string         `json:"location"`
	OpeningFloatAmount decimal.Decimal `json:"opening_float_amount"`
	OverrideCode       *string         `json:"override_code"`
}

type DenominationCount struct {
	Denomination decimal.Decimal `json:"denomination" validate:"required"`
	Quantity     int             `json:"quantity" validate:"min=0"`
}

type CloseSessionRequest struct {
	CashRegisterID string              `json:"cash_register_id" validate:"required,uuid"`
	Denominations  []DenominationCount `json:"denominations" validate:"required,dive"`
	Notes          *string             `json:"notes"`
	OverrideCode   *string             `json:"override_code"`
}

type CreateMovementRequest struct {
	CashRegisterID string          `json:"cash_register_id" validate:"required,uuid"`
	Type           string          `json:"type" validate:"required,oneof=supply withdrawal"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	Notes          *string         `json:"notes"`
	OverrideCode   *string         `json:"override_code"`
}

type ReopenSessionRequest struct {
	Justification string `json:"justification" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashRegisterResponse struct {
	ID        string     `json:"id"`
	Code      int        `json:"code"`
	Name      string     `json:"name"`
	Location  *string    `json:"location"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func FromCashRegister(r *model.CashRegister) CashRegisterResponse {
	return CashRegisterResponse{
		ID:        r.ID.String(),
		Code:      r.Code,
		Name:      r.Name,
		Location:  r.Location,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type CashSessionResponse struct {
	ID                   string           `json:"id"`
	CashRegisterID       string           `json:"cash_register_id"`
	OpenedByUserID       string           `json:"opened_by_user_id"`
	ClosedByUserID       *string          `json:"closed_by_user_id"`
	OpenedAt             time.Time        `json:"opened_at"`
	ClosedAt             *time.Time       `json:"closed_at"`
	OpeningFloatAmount   decimal.Decimal  `json:"opening_float_amount"`
	ClosingCountedAmount *decimal.Decimal `json:"closing_counted_amount"`
	ClosingNotes         *string          `json:"closing_notes"`
}

func FromCashSession(s *model.CashSession) CashSessionResponse {
	resp := CashSessionResponse{
		ID:                   s.ID.String(),
		CashRegisterID:       s.CashRegisterID.String(),
		OpenedByUserID:       s.OpenedByUserID.String(),
		OpenedAt:             s.OpenedAt,
		ClosedAt:             s.ClosedAt,
		OpeningFloatAmount:   s.OpeningFloatAmount,
		ClosingCountedAmount: s.ClosingCountedAmount,
		ClosingNotes:         s.ClosingNotes,
	}
	if s.ClosedByUserID != nil {
		id := s.ClosedByUserID.String()
		resp.ClosedByUserID = &id
	}
	return resp
}

type CashMovementResponse struct {
	ID                  string          `json:"id"`
	CashSessionID       string          `json:"cash_session_id"`
	Type                string          `json:"type"`
	Amount              decimal.Decimal `json:"amount"`
	Notes               *string         `json:"notes"`
	CreatedByUserID     string          `json:"created_by_user_id"`
	AdminOverrideCodeID *string         `json:"admin_override_code_id"`
	CreatedAt           time.Time       `json:"created_at"`
}

func FromCashMovement(m *model.CashMovement) CashMovementResponse {
	resp := CashMovementResponse{
		ID:              m.ID.String(),
		CashSessionID:   m.CashSessionID.String(),
		Type:            string(m.Type),
		Amount:          m.Amount,
		Notes:           m.Notes,
		CreatedByUserID: m.CreatedByUserID.String(),
		CreatedAt:       m.CreatedAt,
	}
	if m.AdminOverrideCodeID != nil {
		id := m.AdminOverrideCodeID.String()
		resp.AdminOverrideCodeID = &id
	}
	return resp
}

type ReopenEventResponse struct {
	ID                    string    `json:"id"`
	CashSessionID         string    `json:"cash_session_id"`
	ReopenedByAdminUserID string    `json:"reopened_by_admin_user_id"`
	ReopenedAt            time.Time `json:"reopened_at"`
	Justification         string    `json:"justification"`
}

func FromReopenEvent(e *model.CashSessionReopenEvent) ReopenEventResponse {
	return ReopenEventResponse{
		ID:                    e.ID.String(),
		CashSessionID:         e.CashSessionID.String(),
		ReopenedByAdminUserID: e.ReopenedByAdminUserID.String(),
		ReopenedAt:            e.ReopenedAt,
		Justification:         e.Justification,
	}
}
