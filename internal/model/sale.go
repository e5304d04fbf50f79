package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus is always derived, never set directly by a caller:
// draft when total is zero, pending_payment while paid < total,
// paid when paid >= total > 0. Cancelled is a terminal explicit transition.
type SaleStatus string

const (
	SaleDraft          SaleStatus = "draft"
	SalePendingPayment SaleStatus = "pending_payment"
	SalePaid           SaleStatus = "paid"
	SaleCancelled      SaleStatus = "cancelled"
)

// DeriveSaleStatus returns the status implied by (paid, total).
func DeriveSaleStatus(paid, total decimal.Decimal) SaleStatus {
	switch {
	case total.IsPositive() && paid.GreaterThanOrEqual(total):
		return SalePaid
	case total.IsPositive():
		return SalePendingPayment
	default:
		return SaleDraft
	}
}

// SalePaymentMethod: "cash" is the only method that touches the till.
type SalePaymentMethod string

const (
	PaymentCash         SalePaymentMethod = "cash"
	PaymentPix          SalePaymentMethod = "pix"
	PaymentDebitCard    SalePaymentMethod = "debit_card"
	PaymentCreditCard   SalePaymentMethod = "credit_card"
	PaymentVoucher      SalePaymentMethod = "voucher"
	PaymentBoleto       SalePaymentMethod = "boleto"
	PaymentBankTransfer SalePaymentMethod = "bank_transfer"
	PaymentStoreCredit  SalePaymentMethod = "store_credit"
	PaymentOther        SalePaymentMethod = "other"
)

// Valid reports whether m is a known payment method.
func (m SalePaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentDebitCard, PaymentCreditCard,
		PaymentVoucher, PaymentBoleto, PaymentBankTransfer, PaymentStoreCredit, PaymentOther:
		return true
	}
	return false
}

// Sale is pinned to the session open at creation time — it does not float to
// whatever session happens to be open later. All monetary fields are derived
// except SaleDiscountAmount, which is the explicit sale-level discount.
type Sale struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code           int        `gorm:"autoIncrement;uniqueIndex"`
	Status         SaleStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	CashRegisterID uuid.UUID  `gorm:"type:uuid;index;not null"`
	CashSessionID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;index;not null"`

	SubtotalAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ItemDiscountTotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaleDiscountAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount              decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedByUserID   uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedByUserID   *uuid.UUID `gorm:"type:uuid"`
	UpdatedAt         *time.Time
	FinalizedByUserID *uuid.UUID `gorm:"type:uuid"`
	FinalizedAt       *time.Time
	CancelledByUserID *uuid.UUID `gorm:"type:uuid"`
	CancelledAt       *time.Time
	CancelReason      *string

	Items    []SaleItem    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments []SalePayment `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Events   []SaleEvent   `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem holds one product line. At most one item per (sale, product):
// repeated adds of the same product must go through update.
// LineTotalAmount = UnitPriceFinal*Quantity - DiscountAmount, never negative.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sale_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sale_product"`

	Quantity          decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPriceOriginal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPriceFinal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedByUserID uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedByUserID *uuid.UUID `gorm:"type:uuid"`
	UpdatedAt       *time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SalePayment records one captured payment. For cash, AmountReceived is
// mandatory and ChangeGiven = AmountReceived - Amount; for other methods both
// stay informational.
type SalePayment struct {
	ID     uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID         `gorm:"type:uuid;index;not null"`
	Method SalePaymentMethod `gorm:"type:varchar(20);not null"`

	Amount            decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	AmountReceived    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ChangeGiven       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	AuthorizationCode *string          `gorm:"type:varchar(60)"`

	CreatedByUserID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

// SaleEventType enumerates the audit trail entries.
type SaleEventType string

const (
	EventCreated      SaleEventType = "created"
	EventItemAdded    SaleEventType = "item_added"
	EventItemUpdated  SaleEventType = "item_updated"
	EventItemRemoved  SaleEventType = "item_removed"
	EventPaymentAdded SaleEventType = "payment_added"
	EventFinalized    SaleEventType = "finalized"
	EventCancelled    SaleEventType = "cancelled"
)

// SaleEvent is append-only; rows are never mutated or deleted.
type SaleEvent struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID            uuid.UUID     `gorm:"type:uuid;index;not null"`
	Type              SaleEventType `gorm:"type:varchar(20);not null"`
	Details           *string
	PerformedByUserID uuid.UUID `gorm:"type:uuid;not null"`
	PerformedAt       time.Time `gorm:"not null"`
}
