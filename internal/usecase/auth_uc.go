package usecase

import (
	"context"
	"errors"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/infra/logging"
	"teachshare/internal/infra/metrics"
	"teachshare/internal/infra/security"

	"github.com/rs/zerolog"
)

// TokenSigner mints a bearer credential carrying only the user identifier.
// Verification lives at the HTTP boundary; use cases never parse tokens.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

type AuthUseCase interface {
	Register(ctx context.Context, username, email, password, phone string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID, username, phone string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type authUC struct {
	users  repository.UserRepository
	tokens TokenSigner
	log    *zerolog.Logger
}

func NewAuthUseCase(users repository.UserRepository, tokens TokenSigner, logger *zerolog.Logger) *authUC {
	return &authUC{users: users, tokens: tokens, log: logger}
}

func (u *authUC) Register(ctx context.Context, username, email, password, phone string) (*model.User, string, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Register")()

	if err := model.ValidatePassword(password); err != nil {
		return nil, "", err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	user, err := model.NewUser("", username, email, hash, phone)
	if err != nil {
		return nil, "", err
	}

	exists, err := u.users.ExistsByEmailOrUsername(ctx, repository.NoTX, user.Email, user.Username)
	if err != nil {
		return nil, "", err
	}
	if exists {
		metrics.IncAuthAttempt("register", "rejected")
		return nil, "", domain.ErrAlreadyExists
	}

	// The unique constraints still back this up against a concurrent register.
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			metrics.IncAuthAttempt("register", "rejected")
		}
		return nil, "", err
	}

	token, err := u.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	metrics.IncAuthAttempt("register", "ok")
	u.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, token, nil
}

func (u *authUC) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Login")()

	if err := model.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if password == "" {
		return nil, "", domain.ErrInvalidArgument
	}

	user, err := u.users.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncAuthAttempt("login", "rejected")
			return nil, "", domain.ErrUnauthenticated
		}
		return nil, "", err
	}
	if !user.IsActive {
		metrics.IncAuthAttempt("login", "rejected")
		return nil, "", domain.ErrUnauthenticated
	}
	if !security.VerifyPassword(user.PasswordHash, password) {
		metrics.IncAuthAttempt("login", "rejected")
		return nil, "", domain.ErrUnauthenticated
	}

	user.Touch()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, "", err
	}

	token, err := u.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	metrics.IncAuthAttempt("login", "ok")
	return user, token, nil
}

func (u *authUC) Get(ctx context.Context, userID string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Get")()
	return u.users.FindByID(ctx, repository.NoTX, userID)
}

func (u *authUC) UpdateProfile(ctx context.Context, userID, username, phone string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "AuthUC.UpdateProfile")()

	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if username != "" && username != user.Username {
		if err := model.ValidateUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if phone != "" {
		user.Phone = phone
	}
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUC) ChangePassword(ctx context.Context, userID, current, next string) error {
	defer logging.TraceDuration(u.log, "AuthUC.ChangePassword")()

	if err := model.ValidatePassword(next); err != nil {
		return err
	}
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	if !security.VerifyPassword(user.PasswordHash, current) {
		return domain.ErrUnauthenticated
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return u.users.Save(ctx, repository.NoTX, user)
}
