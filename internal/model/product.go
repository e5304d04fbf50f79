package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog collaborator the sale engine consumes: the engine
// only reads IsActive and SalePrice at item-add time.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(200);index;not null"`
	Description *string
	Sku         *string `gorm:"type:varchar(60)"`
	Barcode     *string `gorm:"type:varchar(30);uniqueIndex"`
	Unit        string  `gorm:"type:varchar(20);not null;default:'UN'"`

	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt *time.Time
}
