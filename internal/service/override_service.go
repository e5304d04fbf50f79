package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/apierror"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/repository"

	"github.com/google/uuid"
)

// OverrideService is the authorization gate for privileged actions: it issues
// short-lived 6-digit elevation codes and consumes them exactly once. Codes
// exist so a cashier can get synchronous approval from a supervisor standing
// nearby, not to be a long-lived credential — only the digest is stored, so a
// snapshot of the store leaks nothing usable.
type OverrideService interface {
	// Issue returns the plaintext code and its expiry. The plaintext cannot
	// be retrieved again.
	Issue(ctx context.Context, adminUserID uuid.UUID, purpose model.OverridePurpose, justification *string, now time.Time) (string, time.Time, error)
	// ValidateAndConsume returns the consumed record so callers can link it
	// for audit, or an authorization failure. Consumption is exactly-once:
	// the repository performs it as a single atomic conditional write.
	ValidateAndConsume(ctx context.Context, code string, purpose model.OverridePurpose, userID uuid.UUID, now time.Time) (*model.AdminOverrideCode, error)
}

type overrideService struct {
	repo   repository.OverrideRepository
	expiry time.Duration
}

func NewOverrideService(repo repository.OverrideRepository, expiry time.Duration) OverrideService {
	return &overrideService{repo: repo, expiry: expiry}
}

func (s *overrideService) Issue(ctx context.Context, adminUserID uuid.UUID, purpose model.OverridePurpose, justification *string, now time.Time) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	expiresAt := now.Add(s.expiry)

	record := &model.AdminOverrideCode{
		CodeHash:             hashCode(code),
		Purpose:              purpose,
		Justification:        justification,
		CreatedByAdminUserID: adminUserID,
		CreatedAt:            now,
		ExpiresAt:            expiresAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return "", time.Time{}, err
	}
	return code, expiresAt, nil
}

func (s *overrideService) ValidateAndConsume(ctx context.Context, code string, purpose model.OverridePurpose, userID uuid.UUID, now time.Time) (*model.AdminOverrideCode, error) {
	normalized := strings.TrimSpace(code)
	if normalized == "" || len(normalized) != 6 || !allDigits(normalized) {
		return nil, apierror.Unauthorized("override code invalid or expired")
	}

	consumed, err := s.repo.Consume(ctx, hashCode(normalized), purpose, userID, now)
	if err != nil {
		return nil, err
	}
	if consumed == nil {
		return nil, apierror.Unauthorized("override code invalid or expired")
	}
	return consumed, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return base64.StdEncoding.EncodeToString(sum[:])
}
