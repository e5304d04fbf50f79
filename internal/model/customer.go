package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer exists for the sale engine only as an existence check on sale
// creation; the rest of the fields are registry data.
type Customer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code     int       `gorm:"autoIncrement;uniqueIndex"`
	Name     string    `gorm:"type:varchar(200);index;not null"`
	Document *string   `gorm:"type:varchar(14)"`
	Email    *string   `gorm:"type:varchar(200)"`
	Phone    *string   `gorm:"type:varchar(30)"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt *time.Time
}
