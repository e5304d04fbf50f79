package repository

import (
	"context"
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideRepository persists elevation codes. Consume is the atomic
// read-modify-write the gate's exactly-once guarantee rests on.
type OverrideRepository interface {
	Create(ctx context.Context, c *model.AdminOverrideCode) error
	// Consume marks the unused, unexpired code with the given digest and
	// purpose as used in a single conditional UPDATE and returns the consumed
	// record, or nil when no such code exists. Two concurrent callers can
	// never both succeed: the guarded UPDATE matches at most once.
	Consume(ctx context.Context, codeHash string, purpose model.OverridePurpose, usedBy uuid.UUID, now time.Time) (*model.AdminOverrideCode, error)
}

type overrideRepo struct{ db *gorm.DB }

func NewOverrideRepository(db *gorm.DB) OverrideRepository { return &overrideRepo{db: db} }

func (r *overrideRepo) Create(ctx context.Context, c *model.AdminOverrideCode) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *overrideRepo) Consume(ctx context.Context, codeHash string, purpose model.OverridePurpose, usedBy uuid.UUID, now time.Time) (*model.AdminOverrideCode, error) {
	var consumed []model.AdminOverrideCode
	res := r.db.WithContext(ctx).
		Model(&consumed).
		Clauses(clause.Returning{}).
		Where("code_hash = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?", codeHash, purpose, now).
		Updates(map[string]interface{}{
			"used_at":         now,
			"used_by_user_id": usedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &consumed[0], nil
}
