package repository

import (
	"context"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CashRepository is the persistence boundary of the session lifecycle.
// The single-open-session invariant is enforced by a partial unique index on
// cash_sessions (see infra.applySchemaPatches); CreateSession surfaces the
// violation as gorm.ErrDuplicatedKey.
type CashRepository interface {
	FindRegisterByName(ctx context.Context, name string) (*model.CashRegister, error)
	FindRegisterByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	CreateRegister(ctx context.Context, r *model.CashRegister) error
	UpdateRegister(ctx context.Context, r *model.CashRegister) error
	ListRegisters(ctx context.Context) ([]model.CashRegister, error)

	CreateSession(ctx context.Context, s *model.CashSession) error
	FindOpenSessionByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error
	CreateDenominationsTx(tx *gorm.DB, denoms []model.CashSessionDenomination) error
	CreateReopenEventTx(tx *gorm.DB, evt *model.CashSessionReopenEvent) error

	CreateMovement(ctx context.Context, m *model.CashMovement) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) DB() *gorm.DB { return r.db }

func (r *cashRepo) FindRegisterByName(ctx context.Context, name string) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&reg).Error
	return &reg, err
}

func (r *cashRepo) FindRegisterByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).First(&reg, id).Error
	return &reg, err
}

func (r *cashRepo) CreateRegister(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *cashRepo) UpdateRegister(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

func (r *cashRepo) ListRegisters(ctx context.Context) ([]model.CashRegister, error) {
	var regs []model.CashRegister
	err := r.db.WithContext(ctx).Order("code ASC").Find(&regs).Error
	return regs, err
}

func (r *cashRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashRepo) FindOpenSessionByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("cash_register_id = ? AND closed_at IS NULL", registerID).
		First(&s).Error
	return &s, err
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *cashRepo) UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error {
	return tx.Save(s).Error
}

func (r *cashRepo) CreateDenominationsTx(tx *gorm.DB, denoms []model.CashSessionDenomination) error {
	if len(denoms) == 0 {
		return nil
	}
	return tx.Create(&denoms).Error
}

func (r *cashRepo) CreateReopenEventTx(tx *gorm.DB, evt *model.CashSessionReopenEvent) error {
	return tx.Create(evt).Error
}

func (r *cashRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cashRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *cashRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("cash_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}
