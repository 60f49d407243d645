package api

import (
	"context"
	"net/http"

	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/infra/logging"
	"teachshare/internal/infra/metrics"
)

type ctxKey string

const ctxSubject ctxKey = "subject"

// SubjectFrom returns the authenticated user attached by authenticate. The
// subject is threaded through the request context explicitly; there is no
// ambient global.
func SubjectFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(ctxSubject).(*model.User)
	return u, ok
}

// authenticate is steps 1-3 of the gate: extract the credential, verify it,
// and load a fresh subject record. Role and membership claims inside the token
// are never trusted; only the subject ID is read from it.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := s.tokens.FromRequest(r)
		if !ok {
			metrics.IncGateDenial("token")
			writeFailure(w, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := s.tokens.Verify(tok)
		if err != nil {
			metrics.IncGateDenial("token")
			writeFailure(w, http.StatusUnauthorized, "invalid or expired credential")
			return
		}

		user, err := s.users.FindByID(r.Context(), repository.NoTX, userID)
		if err != nil || !user.IsActive {
			metrics.IncGateDenial("subject")
			writeFailure(w, http.StatusUnauthorized, "account unknown or disabled")
			return
		}
		// The stored hash never travels further than this lookup.
		user.PasswordHash = ""

		ctx := context.WithValue(r.Context(), ctxSubject, user)
		ctx = logging.WithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin is step 4: the freshly fetched subject must hold the admin role.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := SubjectFrom(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if subject.Role != model.RoleAdmin {
			metrics.IncGateDenial("role")
			writeFailure(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
