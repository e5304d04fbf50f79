package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User stores system users. Role: "admin" | "cashier". Admins bypass the
// override-code gates; cashiers need a supervisor-issued code for gated
// actions.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(200);not null"`
	Email        *string   `gorm:"type:varchar(200)"`
	PasswordHash string    `gorm:"type:varchar(500);not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// IsAdmin reports the privileged flag the engines receive.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
