package model

import (
	"time"

	"github.com/google/uuid"
)

// OverridePurpose tags what a code authorizes.
type OverridePurpose string

const (
	PurposeOpenSession   OverridePurpose = "open_session"
	PurposeCloseSession  OverridePurpose = "close_session"
	PurposeReopenSession OverridePurpose = "reopen_session"
	PurposeCashMovement  OverridePurpose = "cash_movement"
)

// AdminOverrideCode is a single-use, time-boxed elevation code. Only the
// SHA-256 digest of the 6-digit code is stored; the plaintext is returned to
// the issuing admin exactly once. UsedAt/UsedByUserID are set atomically on
// consumption — a code can never be consumed twice.
type AdminOverrideCode struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodeHash             string          `gorm:"type:varchar(64);index;not null"`
	Purpose              OverridePurpose `gorm:"type:varchar(20);not null"`
	Justification        *string
	CreatedByAdminUserID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt            time.Time `gorm:"not null"`
	ExpiresAt            time.Time `gorm:"not null"`
	UsedAt               *time.Time
	UsedByUserID         *uuid.UUID `gorm:"type:uuid"`
}
