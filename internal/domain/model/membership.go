package model

import (
	"math"
	"time"
)

type MembershipType string

const (
	MembershipFree     MembershipType = "free"
	MembershipMonthly  MembershipType = "monthly"
	MembershipLifetime MembershipType = "lifetime"
)

// RenewPolicy controls what redeeming a code does to an existing membership.
type RenewPolicy string

const (
	// RenewPolicyReset replaces the current membership with the code's grant.
	// Redeeming a second monthly code restarts the clock instead of adding the
	// remaining days on top. The alternative (extend) needs a product decision
	// before it can be enabled; see RenewPolicyExtend.
	RenewPolicyReset RenewPolicy = "reset"

	// RenewPolicyExtend would add the code's duration to an unexpired monthly
	// membership. Intentionally not wired anywhere yet.
	RenewPolicyExtend RenewPolicy = "extend"
)

// ActiveRenewPolicy is the policy applied by the redemption flow.
const ActiveRenewPolicy = RenewPolicyReset

// Membership is the entitlement tier stored on a user. ExpiresAt only carries
// meaning for the monthly tier; free and lifetime ignore it.
type Membership struct {
	Type      MembershipType
	ExpiresAt *time.Time
}

func FreeMembership() Membership {
	return Membership{Type: MembershipFree}
}

// ActiveAt reports whether the membership grants access at instant t.
// A monthly membership with no expiry on record counts as already expired,
// and at exactly ExpiresAt the membership is no longer active.
func (m Membership) ActiveAt(t time.Time) bool {
	switch m.Type {
	case MembershipLifetime:
		return true
	case MembershipMonthly:
		return m.ExpiresAt != nil && t.Before(*m.ExpiresAt)
	default:
		return false
	}
}

// DaysLeftAt returns the whole days remaining until expiry, rounded up, or nil
// when there is no expiry on record. The value goes negative once the
// membership has lapsed; callers that only want a display value should gate on
// ActiveAt themselves.
func (m Membership) DaysLeftAt(t time.Time) *int {
	if m.ExpiresAt == nil {
		return nil
	}
	days := int(math.Ceil(m.ExpiresAt.Sub(t).Hours() / 24))
	return &days
}

// MembershipFromCode computes the membership a code grants when redeemed at
// instant now. The grant overwrites whatever the user had before
// (ActiveRenewPolicy), so a lifetime code clears any stored expiry.
func MembershipFromCode(code *ActivationCode, now time.Time) Membership {
	if code.MembershipType == MembershipLifetime {
		return Membership{Type: MembershipLifetime}
	}
	exp := now.AddDate(0, 0, code.DurationDays)
	return Membership{Type: MembershipMonthly, ExpiresAt: &exp}
}
