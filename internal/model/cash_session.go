package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSession is one open/close cycle of a register. A session is open while
// ClosedAt is null; a partial unique index on (cash_register_id) WHERE
// closed_at IS NULL guarantees at most one open session per register (see
// infra.applySchemaPatches).
type CashSession struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashRegisterID uuid.UUID `gorm:"type:uuid;index;not null"`
	OpenedByUserID uuid.UUID `gorm:"type:uuid;not null"`
	ClosedByUserID *uuid.UUID `gorm:"type:uuid"`

	OpenedAt time.Time  `gorm:"not null"`
	ClosedAt *time.Time `gorm:"index"`

	OpeningFloatAmount   decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ClosingCountedAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ClosingNotes         *string

	CashRegister  *CashRegister            `gorm:"foreignKey:CashRegisterID"`
	Denominations []CashSessionDenomination `gorm:"foreignKey:CashSessionID;constraint:OnDelete:CASCADE"`
	Movements     []CashMovement            `gorm:"foreignKey:CashSessionID;constraint:OnDelete:CASCADE"`
}

// CashSessionDenomination is one counted bill/coin value at close.
// Denomination values are unique within a session.
type CashSessionDenomination struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_session_denomination"`
	Denomination  decimal.Decimal `gorm:"type:decimal(12,2);not null;uniqueIndex:idx_session_denomination"`
	Quantity      int             `gorm:"not null"`
}

// CashMovementType: "supply" | "withdrawal"
type CashMovementType string

const (
	MovementSupply     CashMovementType = "supply"
	MovementWithdrawal CashMovementType = "withdrawal"
)

// CashMovement is an immutable entry in the session's cash ledger.
// Movements are NEVER modified or deleted — sale cancellations create
// compensating entries.
type CashMovement struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID       uuid.UUID        `gorm:"type:uuid;index;not null"`
	Type                CashMovementType `gorm:"type:varchar(20);not null"`
	Amount              decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Notes               *string
	CreatedByUserID     uuid.UUID  `gorm:"type:uuid;not null"`
	AdminOverrideCodeID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt           time.Time  `gorm:"not null"`
}

// CashSessionReopenEvent is the append-only audit trail of admin reopens.
// Justification is mandatory.
type CashSessionReopenEvent struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID         uuid.UUID `gorm:"type:uuid;index;not null"`
	ReopenedByAdminUserID uuid.UUID `gorm:"type:uuid;not null"`
	ReopenedAt            time.Time `gorm:"not null"`
	Justification         string    `gorm:"not null"`
}
