package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/apierror"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/dto"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashService drives the register/session lifecycle. Privileged gates follow
// one rule everywhere: admins pass, cashiers present a single-use override
// code issued for the matching purpose.
type CashService interface {
	OpenSession(ctx context.Context, userID uuid.UUID, isAdmin bool, req dto.OpenSessionRequest) (*model.CashSession, error)
	CloseSession(ctx context.Context, userID uuid.UUID, isAdmin bool, req dto.CloseSessionRequest) (*model.CashSession, error)
	CreateMovement(ctx context.Context, userID uuid.UUID, isAdmin bool, req dto.CreateMovementRequest) (*model.CashMovement, error)
	ReopenSession(ctx context.Context, adminUserID uuid.UUID, sessionID uuid.UUID, req dto.ReopenSessionRequest) (*model.CashSession, error)

	ListRegisters(ctx context.Context) ([]model.CashRegister, error)
	GetOpenSession(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)
}

// CashGateConfig toggles the override gate on manual till movements.
// Open/close gates are not configurable.
type CashGateConfig struct {
	RequireOverrideForSupply     bool
	RequireOverrideForWithdrawal bool
}

type cashService struct {
	repo      repository.CashRepository
	overrides OverrideService
	gates     CashGateConfig
}

func NewCashService(repo repository.CashRepository, overrides OverrideService, gates CashGateConfig) CashService {
	return &cashService{repo: repo, overrides: overrides, gates: gates}
}

// ── OpenSession ───────────────────────────────────────────────────────────────

func (s *cashService) OpenSession(ctx context.Context, userID uuid.UUID, isAdmin bool, req dto.OpenSessionRequest) (*model.CashSession, error) {
	name := strings.TrimSpace(req.CashRegisterName)
	if name == "" {
		return nil, apierror.Validation("cash register name is required")
	}
	if req.OpeningFloatAmount.IsNegative() {
		return nil, apierror.Validation("opening float amount cannot be negative")
	}

	now := time.Now().UTC()
	if !isAdmin {
		if err := s.consumeGate(ctx, req.OverrideCode, model.PurposeOpenSession, userID, now); err != nil {
			return nil, err
		}
	}

	register, err := s.getOrCreateRegister(ctx, name, req.Location)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindOpenSessionByRegister(ctx, register.ID); err == nil {
		return nil, apierror.Conflict("cash register already has an open session")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &model.CashSession{
		CashRegisterID:     register.ID,
		OpenedByUserID:     userID,
		OpenedAt:           now,
		OpeningFloatAmount: req.OpeningFloatAmount,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		// Lost the race against a concurrent open: the partial unique index
		// on (cash_register_id) WHERE closed_at IS NULL rejected the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("cash register already has an open session")
		}
		return nil, err
	}
	session.CashRegister = register
	return session, nil
}

// getOrCreateRegister resolves a register by its trimmed name, creating it on
// first use. A provided location overwrites a stale one.
func (s *cashService) getOrCreateRegister(ctx context.Context, name string, location *string) (*model.CashRegister, error) {
	register, err := s.repo.FindRegisterByName(ctx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		register = &model.CashRegister{Name: name, Location: location, IsActive: true}
		if err := s.repo.CreateRegister(ctx, register); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Concurrent first-open created it; re-read.
				return s.repo.FindRegisterByName(ctx, name)
			}
			return nil, err
		}
		return register, nil
	}

	if location != nil && (register.Location == nil || *register.Location != *location) {
		register.Location = location
		if err := s.repo.UpdateRegister(ctx, register); err != nil {
			return nil, err
		}
	}
	return register, nil
}

// ── CloseSession ──────────────────────────────────────────────────────────────
// Counted total is Σ(denomination × quantity); there is no variance check
// against expected cash, the count is recorded as declared.

func (s *cashService) CloseSession(ctx context.Context, userID uuid.UUID, isAdmin bool, req dto.CloseSessionRequest) (*model.CashSession, error) {
	registerID, err := uuid.Parse(req.CashRegisterID)
	if err != nil {
		return nil, apierror.Validation("cash_register_id is not a valid uuid")
	}

	counted, denoms, err := tallyDenominations(req.Denominations)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !isAdmin {
		if err := s.consumeGate(ctx, req.OverrideCode, model.PurposeCloseSession, userID, now); err != nil {
			return nil, err
		}
	}

	session, err := s.repo.FindOpenSessionByRegister(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Conflict("cash register has no open session")
		}
		return nil, err
	}

	session.ClosedAt = &now
	session.ClosedByUserID = &userID
	session.ClosingCountedAmount = &counted
	session.ClosingNotes = req.Notes
	for i := range denoms {
		denoms[i].CashSessionID = session.ID
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateSessionTx(tx, session); err != nil {
			return err
		}
		return s.repo.CreateDenominationsTx(tx, denoms)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// tallyDenominations validates the declared count and returns the total plus
// the rows to persist. Zero-quantity lines are accepted but not stored.
func tallyDenominations(counts []dto.DenominationCount) (decimal.Decimal, []model.CashSessionDenomination, error) {
	total := decimal.Zero
	seen := make(map[string]struct{}, len(counts))
	rows := make([]model.CashSessionDenomination, 0, len(counts))

	for _, c := range counts {
		if !c.Denomination.IsPositive() {
			return decimal.Zero, nil, apierror.Validation("denomination value must be positive")
		}
		if c.Quantity < 0 {
			return decimal.Zero, nil, apierror.Validation("denomination quantity cannot be negative")
		}
		key := c.Denomination.String()
		if _, dup := seen[key]; dup {
			return decimal.Zero, nil, apierror.Validation("duplicate denomination value: " + key)
		}
		seen[key] = struct{}{}

		if c.Quantity == 0 {
			continue
		}
		total = total.Add(c.Denomination.Mul(decimal.NewFromInt(int64(c.Quantity))))
		rows = append(rows, model.CashSessionDenomination{
			Denomination: c.Denomination,
			Quantity:     c.Quantity,
		})
	}
	return total, rows, nil
}

// ── CreateMovement ────────────────────────────────────────────────────────────
// Manual supply/withdrawal. The override gate per type is configuration
// driven; when consumed, the code is linked to the movement for audit.

func (s *cashService) CreateMovement(ctx context.Context, userID uuid.UUID, isAdmin bool, req dto.CreateMovementRequest) (*model.CashMovement, error) {
	registerID, err := uuid.Parse(req.CashRegisterID)
	if err != nil {
		return nil, apierror.Validation("cash_register_id is not a valid uuid")
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("movement amount must be positive")
	}
	movType := model.CashMovementType(req.Type)

	session, err := s.repo.FindOpenSessionByRegister(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Conflict("cash register has no open session")
		}
		return nil, err
	}

	now := time.Now().UTC()
	var overrideID *uuid.UUID
	if !isAdmin && s.gateRequired(movType) {
		code, err := s.consumeGateCode(ctx, req.OverrideCode, model.PurposeCashMovement, userID, now)
		if err != nil {
			return nil, err
		}
		overrideID = &code.ID
	}

	movement := &model.CashMovement{
		CashSessionID:       session.ID,
		Type:                movType,
		Amount:              req.Amount,
		Notes:               req.Notes,
		CreatedByUserID:     userID,
		AdminOverrideCodeID: overrideID,
		CreatedAt:           now,
	}
	if err := s.repo.CreateMovement(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *cashService) gateRequired(t model.CashMovementType) bool {
	switch t {
	case model.MovementSupply:
		return s.gates.RequireOverrideForSupply
	case model.MovementWithdrawal:
		return s.gates.RequireOverrideForWithdrawal
	}
	return false
}

// ── ReopenSession ─────────────────────────────────────────────────────────────
// Admin-only corrective action. The previous closing count and denominations
// stay on record; the reopen itself is appended to the audit trail.

func (s *cashService) ReopenSession(ctx context.Context, adminUserID uuid.UUID, sessionID uuid.UUID, req dto.ReopenSessionRequest) (*model.CashSession, error) {
	justification := strings.TrimSpace(req.Justification)
	if justification == "" {
		return nil, apierror.Validation("justification is required to reopen a session")
	}

	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("cash session not found")
		}
		return nil, err
	}
	if session.ClosedAt == nil {
		return nil, apierror.Conflict("cash session is already open")
	}

	if _, err := s.repo.FindOpenSessionByRegister(ctx, session.CashRegisterID); err == nil {
		return nil, apierror.Conflict("cash register already has an open session")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	session.ClosedAt = nil
	session.ClosedByUserID = nil
	session.ClosingCountedAmount = nil
	session.ClosingNotes = nil

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateSessionTx(tx, session); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("cash register already has an open session")
			}
			return err
		}
		return s.repo.CreateReopenEventTx(tx, &model.CashSessionReopenEvent{
			CashSessionID:         session.ID,
			ReopenedByAdminUserID: adminUserID,
			ReopenedAt:            now,
			Justification:         justification,
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ── Read surface ──────────────────────────────────────────────────────────────

func (s *cashService) ListRegisters(ctx context.Context) ([]model.CashRegister, error) {
	return s.repo.ListRegisters(ctx)
}

func (s *cashService) GetOpenSession(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	session, err := s.repo.FindOpenSessionByRegister(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("cash register has no open session")
		}
		return nil, err
	}
	return session, nil
}

func (s *cashService) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	if _, err := s.repo.FindSessionByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("cash session not found")
		}
		return nil, err
	}
	return s.repo.ListMovements(ctx, sessionID)
}

// consumeGate burns a code for purpose or fails closed.
func (s *cashService) consumeGate(ctx context.Context, code *string, purpose model.OverridePurpose, userID uuid.UUID, now time.Time) error {
	_, err := s.consumeGateCode(ctx, code, purpose, userID, now)
	return err
}

func (s *cashService) consumeGateCode(ctx context.Context, code *string, purpose model.OverridePurpose, userID uuid.UUID, now time.Time) (*model.AdminOverrideCode, error) {
	if code == nil || strings.TrimSpace(*code) == "" {
		return nil, apierror.Unauthorized("admin override code required")
	}
	return s.overrides.ValidateAndConsume(ctx, *code, purpose, userID, now)
}
