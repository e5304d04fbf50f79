package service

import (
	"context"
	"testing"
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/apierror"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/dto"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory CashRepository ─────────────────────────────────────────────────

type memCashRepo struct {
	registers     map[uuid.UUID]*model.CashRegister
	sessions      map[uuid.UUID]*model.CashSession
	denominations []model.CashSessionDenomination
	movements     []model.CashMovement
	reopenEvents  []model.CashSessionReopenEvent
	nextCode      int
}

func newMemCashRepo() *memCashRepo {
	return &memCashRepo{
		registers: make(map[uuid.UUID]*model.CashRegister),
		sessions:  make(map[uuid.UUID]*model.CashSession),
	}
}

func (r *memCashRepo) DB() *gorm.DB { return nil }

func (r *memCashRepo) FindRegisterByName(_ context.Context, name string) (*model.CashRegister, error) {
	for _, reg := range r.registers {
		if reg.Name == name {
			return reg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCashRepo) FindRegisterByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *memCashRepo) CreateRegister(_ context.Context, reg *model.CashRegister) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	r.nextCode++
	reg.Code = r.nextCode
	reg.CreatedAt = time.Now()
	r.registers[reg.ID] = reg
	return nil
}

func (r *memCashRepo) UpdateRegister(_ context.Context, reg *model.CashRegister) error {
	r.registers[reg.ID] = reg
	return nil
}

func (r *memCashRepo) ListRegisters(_ context.Context) ([]model.CashRegister, error) {
	out := make([]model.CashRegister, 0, len(r.registers))
	for _, reg := range r.registers {
		out = append(out, *reg)
	}
	return out, nil
}

func (r *memCashRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	for _, existing := range r.sessions {
		if existing.CashRegisterID == s.CashRegisterID && existing.ClosedAt == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *memCashRepo) FindOpenSessionByRegister(_ context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.CashRegisterID == registerID && s.ClosedAt == nil {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCashRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *memCashRepo) UpdateSessionTx(_ *gorm.DB, s *model.CashSession) error {
	if s.ClosedAt == nil {
		for _, existing := range r.sessions {
			if existing.ID != s.ID && existing.CashRegisterID == s.CashRegisterID && existing.ClosedAt == nil {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *memCashRepo) CreateDenominationsTx(_ *gorm.DB, denoms []model.CashSessionDenomination) error {
	r.denominations = append(r.denominations, denoms...)
	return nil
}

func (r *memCashRepo) CreateReopenEventTx(_ *gorm.DB, evt *model.CashSessionReopenEvent) error {
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	r.reopenEvents = append(r.reopenEvents, *evt)
	return nil
}

func (r *memCashRepo) CreateMovement(_ context.Context, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memCashRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	return r.CreateMovement(context.Background(), m)
}

func (r *memCashRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.CashSessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.CashRepository = (*memCashRepo)(nil)

// ── Stub OverrideService ─────────────────────────────────────────────────────

// stubOverrides accepts the code "123456" once per purpose and records what
// it consumed.
type stubOverrides struct {
	consumed []model.OverridePurpose
}

func (s *stubOverrides) Issue(_ context.Context, _ uuid.UUID, _ model.OverridePurpose, _ *string, now time.Time) (string, time.Time, error) {
	return "123456", now.Add(2 * time.Minute), nil
}

func (s *stubOverrides) ValidateAndConsume(_ context.Context, code string, purpose model.OverridePurpose, _ uuid.UUID, _ time.Time) (*model.AdminOverrideCode, error) {
	if code != "123456" {
		return nil, apierror.Unauthorized("override code invalid or expired")
	}
	s.consumed = append(s.consumed, purpose)
	return &model.AdminOverrideCode{ID: uuid.New(), Purpose: purpose}, nil
}

var _ OverrideService = (*stubOverrides)(nil)

func newCashFixture(gates CashGateConfig) (*memCashRepo, *stubOverrides, CashService) {
	repo := newMemCashRepo()
	overrides := &stubOverrides{}
	return repo, overrides, NewCashService(repo, overrides, gates)
}

func strptr(s string) *string { return &s }

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestOpenSessionCreatesRegisterOnFirstUse(t *testing.T) {
	repo, _, svc := newCashFixture(CashGateConfig{})

	session, err := svc.OpenSession(context.Background(), uuid.New(), true, dto.OpenSessionRequest{
		CashRegisterName:   "  Front Desk  ",
		Location:           strptr("store 1"),
		OpeningFloatAmount: decimal.NewFromInt(100),
	})

	require.NoError(t, err)
	require.Len(t, repo.registers, 1)
	reg := repo.registers[session.CashRegisterID]
	assert.Equal(t, "Front Desk", reg.Name, "register name is trimmed")
	assert.Equal(t, 1, reg.Code)
	assert.Equal(t, decimal.NewFromInt(100).String(), session.OpeningFloatAmount.String())
	assert.Nil(t, session.ClosedAt)
}

func TestOpenSessionReusesRegisterAndUpdatesLocation(t *testing.T) {
	repo, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	s1, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
		Location:         strptr("old"),
	})
	require.NoError(t, err)

	_, err = svc.CloseSession(context.Background(), admin, true, dto.CloseSessionRequest{
		CashRegisterID: s1.CashRegisterID.String(),
		Denominations:  []dto.DenominationCount{},
	})
	require.NoError(t, err)

	s2, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
		Location:         strptr("new"),
	})
	require.NoError(t, err)

	assert.Equal(t, s1.CashRegisterID, s2.CashRegisterID)
	require.Len(t, repo.registers, 1)
	assert.Equal(t, "new", *repo.registers[s2.CashRegisterID].Location)
}

func TestOpenSessionSecondOpenConflicts(t *testing.T) {
	_, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	_, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	_, err = svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestOpenSessionCashierNeedsOverride(t *testing.T) {
	_, overrides, svc := newCashFixture(CashGateConfig{})
	cashier := uuid.New()

	_, err := svc.OpenSession(context.Background(), cashier, false, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))

	_, err = svc.OpenSession(context.Background(), cashier, false, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
		OverrideCode:     strptr("123456"),
	})
	require.NoError(t, err)
	assert.Equal(t, []model.OverridePurpose{model.PurposeOpenSession}, overrides.consumed)
}

func TestOpenSessionNegativeFloatRejected(t *testing.T) {
	_, _, svc := newCashFixture(CashGateConfig{})

	_, err := svc.OpenSession(context.Background(), uuid.New(), true, dto.OpenSessionRequest{
		CashRegisterName:   "Front Desk",
		OpeningFloatAmount: decimal.NewFromInt(-1),
	})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCloseSessionCountsDenominations(t *testing.T) {
	repo, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	closed, err := svc.CloseSession(context.Background(), admin, true, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations: []dto.DenominationCount{
			{Denomination: decimal.NewFromInt(100), Quantity: 3},
			{Denomination: decimal.NewFromFloat(0.5), Quantity: 4},
			{Denomination: decimal.NewFromInt(50), Quantity: 0},
		},
	})
	require.NoError(t, err)

	// 100×3 + 0.50×4 = 302, the zero-quantity line is dropped
	require.NotNil(t, closed.ClosingCountedAmount)
	assert.True(t, closed.ClosingCountedAmount.Equal(decimal.NewFromInt(302)), "got %s", closed.ClosingCountedAmount)
	assert.NotNil(t, closed.ClosedAt)
	assert.Equal(t, admin, *closed.ClosedByUserID)
	assert.Len(t, repo.denominations, 2)
}

func TestCloseSessionRejectsDuplicateDenomination(t *testing.T) {
	_, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	_, err = svc.CloseSession(context.Background(), admin, true, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations: []dto.DenominationCount{
			{Denomination: decimal.NewFromInt(100), Quantity: 1},
			{Denomination: decimal.NewFromInt(100), Quantity: 2},
		},
	})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCloseSessionWithoutOpenSessionConflicts(t *testing.T) {
	_, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	_, err = svc.CloseSession(context.Background(), admin, true, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations:  []dto.DenominationCount{},
	})
	require.NoError(t, err)

	_, err = svc.CloseSession(context.Background(), admin, true, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations:  []dto.DenominationCount{},
	})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestCloseSessionCashierNeedsOverride(t *testing.T) {
	_, overrides, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()
	cashier := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	_, err = svc.CloseSession(context.Background(), cashier, false, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations:  []dto.DenominationCount{},
	})
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))

	_, err = svc.CloseSession(context.Background(), cashier, false, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations:  []dto.DenominationCount{},
		OverrideCode:   strptr("123456"),
	})
	require.NoError(t, err)
	assert.Contains(t, overrides.consumed, model.PurposeCloseSession)
}

func TestCreateMovementGateIsConfigDriven(t *testing.T) {
	repo, overrides, svc := newCashFixture(CashGateConfig{RequireOverrideForWithdrawal: true})
	admin := uuid.New()
	cashier := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	// Supply is not gated for this config
	_, err = svc.CreateMovement(context.Background(), cashier, false, dto.CreateMovementRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Type:           "supply",
		Amount:         decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Empty(t, overrides.consumed)

	// Withdrawal is
	_, err = svc.CreateMovement(context.Background(), cashier, false, dto.CreateMovementRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Type:           "withdrawal",
		Amount:         decimal.NewFromInt(20),
	})
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))

	mov, err := svc.CreateMovement(context.Background(), cashier, false, dto.CreateMovementRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Type:           "withdrawal",
		Amount:         decimal.NewFromInt(20),
		OverrideCode:   strptr("123456"),
	})
	require.NoError(t, err)
	assert.NotNil(t, mov.AdminOverrideCodeID, "consumed code is linked for audit")
	assert.Len(t, repo.movements, 2)
}

func TestCreateMovementRequiresOpenSessionAndPositiveAmount(t *testing.T) {
	_, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	_, err = svc.CreateMovement(context.Background(), admin, true, dto.CreateMovementRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Type:           "supply",
		Amount:         decimal.Zero,
	})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	_, err = svc.CreateMovement(context.Background(), admin, true, dto.CreateMovementRequest{
		CashRegisterID: uuid.New().String(),
		Type:           "supply",
		Amount:         decimal.NewFromInt(10),
	})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestReopenSessionClearsCloseStateAndAudits(t *testing.T) {
	repo, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	_, err = svc.CloseSession(context.Background(), admin, true, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations:  []dto.DenominationCount{{Denomination: decimal.NewFromInt(10), Quantity: 1}},
		Notes:          strptr("short"),
	})
	require.NoError(t, err)

	reopened, err := svc.ReopenSession(context.Background(), admin, session.ID, dto.ReopenSessionRequest{
		Justification: "recount requested",
	})
	require.NoError(t, err)

	assert.Nil(t, reopened.ClosedAt)
	assert.Nil(t, reopened.ClosedByUserID)
	assert.Nil(t, reopened.ClosingCountedAmount)
	assert.Nil(t, reopened.ClosingNotes)
	require.Len(t, repo.reopenEvents, 1)
	assert.Equal(t, "recount requested", repo.reopenEvents[0].Justification)
	assert.Equal(t, admin, repo.reopenEvents[0].ReopenedByAdminUserID)
}

func TestReopenSessionGuards(t *testing.T) {
	_, _, svc := newCashFixture(CashGateConfig{})
	admin := uuid.New()

	session, err := svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)

	// Unknown session
	_, err = svc.ReopenSession(context.Background(), admin, uuid.New(), dto.ReopenSessionRequest{Justification: "x"})
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))

	// Still open
	_, err = svc.ReopenSession(context.Background(), admin, session.ID, dto.ReopenSessionRequest{Justification: "x"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	_, err = svc.CloseSession(context.Background(), admin, true, dto.CloseSessionRequest{
		CashRegisterID: session.CashRegisterID.String(),
		Denominations:  []dto.DenominationCount{},
	})
	require.NoError(t, err)

	// Blank justification
	_, err = svc.ReopenSession(context.Background(), admin, session.ID, dto.ReopenSessionRequest{Justification: "   "})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	// A newer open session on the same register blocks the reopen
	_, err = svc.OpenSession(context.Background(), admin, true, dto.OpenSessionRequest{
		CashRegisterName: "Front Desk",
	})
	require.NoError(t, err)
	_, err = svc.ReopenSession(context.Background(), admin, session.ID, dto.ReopenSessionRequest{Justification: "x"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}
