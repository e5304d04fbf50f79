package service

import (
	"context"
	"testing"
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/apierror"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory OverrideRepository ─────────────────────────────────────────────

type memOverrideRepo struct {
	codes []*model.AdminOverrideCode
}

func (r *memOverrideRepo) Create(_ context.Context, c *model.AdminOverrideCode) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.codes = append(r.codes, c)
	return nil
}

func (r *memOverrideRepo) Consume(_ context.Context, codeHash string, purpose model.OverridePurpose, usedBy uuid.UUID, now time.Time) (*model.AdminOverrideCode, error) {
	for _, c := range r.codes {
		if c.CodeHash == codeHash && c.Purpose == purpose && c.UsedAt == nil && c.ExpiresAt.After(now) {
			c.UsedAt = &now
			c.UsedByUserID = &usedBy
			return c, nil
		}
	}
	return nil, nil
}

var _ repository.OverrideRepository = (*memOverrideRepo)(nil)

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestIssueOverrideCode(t *testing.T) {
	repo := &memOverrideRepo{}
	svc := NewOverrideService(repo, 120*time.Second)

	now := time.Now().UTC()
	code, expiresAt, err := svc.Issue(context.Background(), uuid.New(), model.PurposeOpenSession, nil, now)

	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, ch := range code {
		assert.True(t, ch >= '0' && ch <= '9')
	}
	assert.Equal(t, now.Add(120*time.Second), expiresAt)

	require.Len(t, repo.codes, 1)
	assert.NotEqual(t, code, repo.codes[0].CodeHash, "plaintext code must never be stored")
}

func TestConsumeOverrideCodeOnce(t *testing.T) {
	repo := &memOverrideRepo{}
	svc := NewOverrideService(repo, 120*time.Second)
	now := time.Now().UTC()

	code, _, err := svc.Issue(context.Background(), uuid.New(), model.PurposeCloseSession, nil, now)
	require.NoError(t, err)

	user := uuid.New()
	rec, err := svc.ValidateAndConsume(context.Background(), code, model.PurposeCloseSession, user, now)
	require.NoError(t, err)
	require.NotNil(t, rec.UsedAt)
	assert.Equal(t, user, *rec.UsedByUserID)

	// Second use of the same code must fail
	_, err = svc.ValidateAndConsume(context.Background(), code, model.PurposeCloseSession, user, now)
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}

func TestConsumeOverrideCodeWrongPurpose(t *testing.T) {
	repo := &memOverrideRepo{}
	svc := NewOverrideService(repo, 120*time.Second)
	now := time.Now().UTC()

	code, _, err := svc.Issue(context.Background(), uuid.New(), model.PurposeOpenSession, nil, now)
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(context.Background(), code, model.PurposeCashMovement, uuid.New(), now)
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))

	// The failed attempt must not have burned the code
	_, err = svc.ValidateAndConsume(context.Background(), code, model.PurposeOpenSession, uuid.New(), now)
	assert.NoError(t, err)
}

func TestConsumeOverrideCodeExpired(t *testing.T) {
	repo := &memOverrideRepo{}
	svc := NewOverrideService(repo, 120*time.Second)
	now := time.Now().UTC()

	code, _, err := svc.Issue(context.Background(), uuid.New(), model.PurposeReopenSession, nil, now)
	require.NoError(t, err)

	later := now.Add(121 * time.Second)
	_, err = svc.ValidateAndConsume(context.Background(), code, model.PurposeReopenSession, uuid.New(), later)
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}

func TestConsumeOverrideCodeMalformed(t *testing.T) {
	repo := &memOverrideRepo{}
	svc := NewOverrideService(repo, 120*time.Second)
	now := time.Now().UTC()

	for _, bad := range []string{"", "12345", "1234567", "12a456", "      "} {
		_, err := svc.ValidateAndConsume(context.Background(), bad, model.PurposeOpenSession, uuid.New(), now)
		assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err), "code %q", bad)
	}
}
