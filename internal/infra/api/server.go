package api

import (
	"context"
	"net/http"
	"time"

	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/infra/logging"
	"teachshare/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RateLimiter is what the server needs from the redis fixed-window limiter.
// A nil limiter disables throttling (tests, dev without redis).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Limits struct {
	LoginPerMinute  int
	RedeemPerMinute int
}

type Server struct {
	authUC     usecase.AuthUseCase
	membership usecase.MembershipUseCase
	codeAdmin  usecase.CodeAdminUseCase
	userAdmin  usecase.UserAdminUseCase
	resources  usecase.ResourceUseCase
	users      repository.UserRepository
	tokens     *TokenManager
	limiter    RateLimiter
	limits     Limits
	log        *zerolog.Logger
	dev        bool
}

func NewServer(
	authUC usecase.AuthUseCase,
	membership usecase.MembershipUseCase,
	codeAdmin usecase.CodeAdminUseCase,
	userAdmin usecase.UserAdminUseCase,
	resources usecase.ResourceUseCase,
	users repository.UserRepository,
	tokens *TokenManager,
	limiter RateLimiter,
	limits Limits,
	logger *zerolog.Logger,
	dev bool,
) *Server {
	return &Server{
		authUC:     authUC,
		membership: membership,
		codeAdmin:  codeAdmin,
		userAdmin:  userAdmin,
		resources:  resources,
		users:      users,
		tokens:     tokens,
		limiter:    limiter,
		limits:     limits,
		log:        logger,
		dev:        dev,
	}
}

// RegisterRoutes sets up the public API. Every route past the auth group runs
// through the authorization gate; admin routes additionally require the admin
// role read from the fresh subject record.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)
			r.Put("/auth/profile", s.handleUpdateProfile)
			r.Put("/auth/password", s.handleChangePassword)

			r.Get("/users/membership", s.handleMembershipStatus)
			r.Get("/users/activations", s.handleRedemptionHistory)
			r.Post("/users/activate", s.handleActivate)

			r.Get("/resources", s.handleListResources)
			r.Get("/resources/{id}", s.handleGetResource)
			r.Post("/resources/{id}/download", s.handleDownloadResource)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/users", s.handleAdminListUsers)
				r.Put("/users/{id}/status", s.handleAdminUpdateUserStatus)

				r.Get("/activation-codes", s.handleAdminListCodes)
				r.Post("/activation-codes/generate", s.handleAdminGenerateCodes)
				r.Post("/activation-codes/export", s.handleAdminExportCodes)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// writeError hides internal failure detail unless running in dev mode.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
		if !s.dev {
			msg = "internal server error"
		}
	}
	writeFailure(w, status, msg)
}

// allow consults the fixed-window limiter; a limiter outage fails open so a
// redis hiccup cannot take logins down with it.
func (s *Server) allow(r *http.Request, key string, perMinute int) bool {
	if s.limiter == nil || perMinute <= 0 {
		return true
	}
	ok, err := s.limiter.Allow(r.Context(), key, perMinute, time.Minute)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	return ok
}
