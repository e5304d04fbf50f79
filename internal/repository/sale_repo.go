package repository

import (
	"context"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleRepository is the persistence boundary of the sale engine. Mutations run
// through the ...Tx variants so the service can span read-validate-write in a
// single transaction. The one-item-per-product invariant is backed by the
// unique index on (sale_id, product_id); CreateItemTx surfaces the violation
// as gorm.ErrDuplicatedKey.
type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	UpdateTx(tx *gorm.DB, s *model.Sale) error

	FindItem(ctx context.Context, saleID, itemID uuid.UUID) (*model.SaleItem, error)
	FindItemByProduct(ctx context.Context, saleID, productID uuid.UUID) (*model.SaleItem, error)
	ListItemsTx(tx *gorm.DB, saleID uuid.UUID) ([]model.SaleItem, error)
	CreateItemTx(tx *gorm.DB, i *model.SaleItem) error
	UpdateItemTx(tx *gorm.DB, i *model.SaleItem) error
	DeleteItemTx(tx *gorm.DB, i *model.SaleItem) error

	CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error
	SumPaymentsTx(tx *gorm.DB, saleID uuid.UUID) (decimal.Decimal, error)
	SumCashPaymentsTx(tx *gorm.DB, saleID uuid.UUID) (decimal.Decimal, error)

	CreateEventTx(tx *gorm.DB, e *model.SaleEvent) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *saleRepo) FindDetail(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&s, id).Error
	return &s, err
}

func (r *saleRepo) UpdateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Save(s).Error
}

func (r *saleRepo) FindItem(ctx context.Context, saleID, itemID uuid.UUID) (*model.SaleItem, error) {
	var i model.SaleItem
	err := r.db.WithContext(ctx).Where("id = ? AND sale_id = ?", itemID, saleID).First(&i).Error
	return &i, err
}

func (r *saleRepo) FindItemByProduct(ctx context.Context, saleID, productID uuid.UUID) (*model.SaleItem, error) {
	var i model.SaleItem
	err := r.db.WithContext(ctx).Where("sale_id = ? AND product_id = ?", saleID, productID).First(&i).Error
	return &i, err
}

func (r *saleRepo) ListItemsTx(tx *gorm.DB, saleID uuid.UUID) ([]model.SaleItem, error) {
	var items []model.SaleItem
	err := tx.Where("sale_id = ?", saleID).Find(&items).Error
	return items, err
}

func (r *saleRepo) CreateItemTx(tx *gorm.DB, i *model.SaleItem) error {
	return tx.Create(i).Error
}

func (r *saleRepo) UpdateItemTx(tx *gorm.DB, i *model.SaleItem) error {
	return tx.Save(i).Error
}

func (r *saleRepo) DeleteItemTx(tx *gorm.DB, i *model.SaleItem) error {
	return tx.Delete(i).Error
}

func (r *saleRepo) CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error {
	return tx.Create(p).Error
}

func (r *saleRepo) SumPaymentsTx(tx *gorm.DB, saleID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Raw(
		"SELECT COALESCE(SUM(amount), 0) FROM sale_payments WHERE sale_id = ?",
		saleID,
	).Scan(&sum).Error
	return sum, err
}

func (r *saleRepo) SumCashPaymentsTx(tx *gorm.DB, saleID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Raw(
		"SELECT COALESCE(SUM(amount), 0) FROM sale_payments WHERE sale_id = ? AND method = ?",
		saleID, model.PaymentCash,
	).Scan(&sum).Error
	return sum, err
}

func (r *saleRepo) CreateEventTx(tx *gorm.DB, e *model.SaleEvent) error {
	return tx.Create(e).Error
}
