package usecase

import (
	"context"
	"time"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserAdminUseCase = (*userAdminUC)(nil)

// StatusUpdate carries the admin override fields. Nil means "leave as is".
// Accounts are never hard-deleted; deactivation is the only removal path.
type StatusUpdate struct {
	IsActive   *bool
	Membership *model.Membership
}

type UserAdminUseCase interface {
	List(ctx context.Context, f repository.UserFilter, limit, offset int) ([]*model.User, int, error)
	UpdateStatus(ctx context.Context, userID string, upd StatusUpdate) (*model.User, error)
}

type userAdminUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserAdminUseCase(users repository.UserRepository, logger *zerolog.Logger) *userAdminUC {
	return &userAdminUC{users: users, log: logger}
}

func (u *userAdminUC) List(ctx context.Context, f repository.UserFilter, limit, offset int) ([]*model.User, int, error) {
	defer logging.TraceDuration(u.log, "UserAdminUC.List")()
	return u.users.List(ctx, repository.NoTX, f, limit, offset)
}

func (u *userAdminUC) UpdateStatus(ctx context.Context, userID string, upd StatusUpdate) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserAdminUC.UpdateStatus")()

	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	if upd.Membership != nil {
		switch upd.Membership.Type {
		case model.MembershipFree, model.MembershipMonthly, model.MembershipLifetime:
		default:
			return nil, domain.ErrInvalidArgument
		}
		user.Membership = *upd.Membership
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", userID).Msg("user status updated by admin")
	return user, nil
}
