package model

import (
	"strings"
	"time"

	"teachshare/internal/domain"

	"github.com/google/uuid"
)

type CodeStatus string

const (
	CodeStatusUnused  CodeStatus = "unused"
	CodeStatusUsed    CodeStatus = "used"
	CodeStatusExpired CodeStatus = "expired"
)

const (
	// CodeLength is the fixed length of a redemption token.
	CodeLength = 16

	// DefaultCodeDurationDays applies when issuance omits a duration.
	DefaultCodeDurationDays = 30

	// MaxGenerateBatch bounds a single issuance request.
	MaxGenerateBatch = 1000
)

// ActivationCode is a single-use redemption token. Status moves one way:
// unused -> used or unused -> expired, and is terminal after that.
type ActivationCode struct {
	ID             string
	Code           string
	MembershipType MembershipType
	DurationDays   int
	Batch          string
	Description    string
	Status         CodeStatus
	UsedBy         *string
	UsedAt         *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	ExpiresAt      *time.Time
}

// ActivationCodeExport is an export row joined with the redeemer's username.
type ActivationCodeExport struct {
	ActivationCode
	RedeemerUsername string
}

// NewActivationCode mints an unused code for issuance. Monthly codes get a
// redemption deadline of now + duration days; lifetime codes never lapse.
func NewActivationCode(mt MembershipType, durationDays int, batch, description, createdBy string, now time.Time) (*ActivationCode, error) {
	if mt != MembershipMonthly && mt != MembershipLifetime {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(batch) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if createdBy == "" {
		return nil, domain.ErrInvalidArgument
	}
	if durationDays <= 0 {
		durationDays = DefaultCodeDurationDays
	}
	ac := &ActivationCode{
		ID:             uuid.NewString(),
		Code:           GenerateCodeToken(),
		MembershipType: mt,
		DurationDays:   durationDays,
		Batch:          strings.TrimSpace(batch),
		Description:    strings.TrimSpace(description),
		Status:         CodeStatusUnused,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}
	if mt == MembershipMonthly {
		exp := now.AddDate(0, 0, durationDays)
		ac.ExpiresAt = &exp
	}
	return ac, nil
}

// GenerateCodeToken produces a fresh random token: a v4 UUID with the dashes
// stripped, truncated to CodeLength and uppercased. Collisions are left to the
// storage layer's unique constraint; issuance retries with a new token.
func GenerateCodeToken() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:CodeLength])
}

// NormalizeCode canonicalizes user input before lookup.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// LapsedAt reports whether an unused code can no longer be redeemed at t.
func (c *ActivationCode) LapsedAt(t time.Time) bool {
	return c.ExpiresAt != nil && t.After(*c.ExpiresAt)
}
