package dto

import "github.com/Cairo-Maranzatto/PDVNow-API/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name     string  `json:"name"     validate:"required,min=2,max=200"`
	Document *string `json:"document" validate:"omitempty,max=14"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Phone    *string `json:"phone"    validate:"omitempty,max=30"`
}

type UpdateCustomerRequest struct {
	Name     string  `json:"name"     validate:"omitempty,min=2,max=200"`
	Document *string `json:"document" validate:"omitempty,max=14"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Phone    *string `json:"phone"    validate:"omitempty,max=30"`
	IsActive *bool   `json:"is_active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID       string  `json:"id"`
	Code     int     `json:"code"`
	Name     string  `json:"name"`
	Document *string `json:"document"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive bool    `json:"is_active"`
}

func FromCustomer(c *model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:       c.ID.String(),
		Code:     c.Code,
		Name:     c.Name,
		Document: c.Document,
		Email:    c.Email,
		Phone:    c.Phone,
		IsActive: c.IsActive,
	}
}
