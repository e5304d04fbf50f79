package model

import (
	"time"

	"github.com/google/uuid"
)

// CashRegister is a physical till. Name is the natural key used on session
// open: the first open against an unknown name creates the register lazily.
type CashRegister struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code     int       `gorm:"autoIncrement;uniqueIndex"`
	Name     string    `gorm:"type:varchar(80);uniqueIndex;not null"`
	Location *string   `gorm:"type:varchar(120)"`
	IsActive bool      `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt *time.Time
}
