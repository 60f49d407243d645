package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/infra/logging"
	"teachshare/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ MembershipUseCase = (*membershipUC)(nil)

// MembershipStatus is the client-facing snapshot of a user's entitlement.
type MembershipStatus struct {
	Membership model.Membership
	Active     bool
	DaysLeft   *int
}

// MembershipUseCase covers code redemption and membership display.
type MembershipUseCase interface {
	// Redeem consumes an unused activation code and grants its membership to
	// the user. The grant and the code flip commit together or not at all.
	Redeem(ctx context.Context, userID, rawCode string) (model.Membership, error)
	Status(ctx context.Context, userID string) (*MembershipStatus, error)
	History(ctx context.Context, userID string) ([]model.CodeRedemption, error)
}

type membershipUC struct {
	users repository.UserRepository
	codes repository.ActivationCodeRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewMembershipUseCase(users repository.UserRepository, codes repository.ActivationCodeRepository, tm repository.TransactionManager, logger *zerolog.Logger) *membershipUC {
	return &membershipUC{users: users, codes: codes, tm: tm, log: logger}
}

func (u *membershipUC) Redeem(ctx context.Context, userID, rawCode string) (model.Membership, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.Redeem")()

	if strings.TrimSpace(rawCode) == "" {
		metrics.IncRedemption("invalid")
		return model.Membership{}, domain.ErrInvalidArgument
	}

	code := model.NormalizeCode(rawCode)
	ac, err := u.codes.FindUnusedByCode(ctx, repository.NoTX, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncRedemption("not_found")
			return model.Membership{}, domain.ErrCodeNotFoundOrUsed
		}
		metrics.IncRedemption("error")
		return model.Membership{}, err
	}

	now := time.Now()

	// A lapsed code is consumed by the failed attempt itself, so it cannot be
	// probed indefinitely. This write deliberately happens outside the grant
	// transaction: the rejection must stick even though redemption fails.
	if ac.LapsedAt(now) {
		if _, err := u.codes.MarkExpired(ctx, repository.NoTX, ac.ID); err != nil {
			u.log.Error().Err(err).Str("code_id", ac.ID).Msg("failed to mark code expired")
		}
		metrics.IncRedemption("expired")
		return model.Membership{}, domain.ErrCodeExpired
	}

	var granted model.Membership
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		user, err := u.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}

		// Conditional flip first: if a concurrent request already consumed the
		// code, this observes zero rows and the whole transaction aborts
		// before the user is touched.
		ok, err := u.codes.MarkUsed(ctx, tx, ac.ID, userID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrCodeNotFoundOrUsed
		}

		// The grant overwrites the prior membership (model.ActiveRenewPolicy):
		// a second monthly code resets the clock, it does not stack.
		granted = model.MembershipFromCode(ac, now)
		user.Membership = granted
		user.UpdatedAt = now
		if err := u.users.Save(ctx, tx, user); err != nil {
			return err
		}

		entry := model.CodeRedemption{Code: ac.Code, MembershipType: ac.MembershipType, UsedAt: now}
		return u.users.AppendRedemption(ctx, tx, userID, entry)
	})
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFoundOrUsed) {
			metrics.IncRedemption("not_found")
		} else {
			metrics.IncRedemption("error")
		}
		return model.Membership{}, err
	}

	metrics.IncRedemption("granted")
	u.log.Info().Str("user_id", userID).Str("batch", ac.Batch).
		Str("membership_type", string(ac.MembershipType)).Msg("activation code redeemed")
	return granted, nil
}

func (u *membershipUC) Status(ctx context.Context, userID string) (*MembershipStatus, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.Status")()

	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &MembershipStatus{
		Membership: user.Membership,
		Active:     user.Membership.ActiveAt(now),
		DaysLeft:   user.Membership.DaysLeftAt(now),
	}, nil
}

func (u *membershipUC) History(ctx context.Context, userID string) ([]model.CodeRedemption, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.History")()
	return u.users.ListRedemptions(ctx, repository.NoTX, userID)
}
