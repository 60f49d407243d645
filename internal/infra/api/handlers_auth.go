package api

import (
	"encoding/json"
	"net"
	"net/http"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/infra/metrics"
	red "teachshare/internal/infra/redis"
)

// userView is the serializable shape of a user; the password hash never
// appears here.
type userView struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone,omitempty"`
	Role        string         `json:"role"`
	Membership  membershipView `json:"membership"`
	IsActive    bool           `json:"isActive"`
	LastLoginAt *jsonTime      `json:"lastLoginAt,omitempty"`
	CreatedAt   jsonTime       `json:"createdAt"`
}

type membershipView struct {
	Type      string    `json:"type"`
	ExpiresAt *jsonTime `json:"expiresAt"`
}

func viewUser(u *model.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		Membership:  viewMembership(u.Membership),
		IsActive:    u.IsActive,
		LastLoginAt: optTime(u.LastLoginAt),
		CreatedAt:   jsonTime(u.CreatedAt),
	}
}

func viewMembership(m model.Membership) membershipView {
	return membershipView{Type: string(m.Type), ExpiresAt: optTime(m.ExpiresAt)}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.authUC.Register(r.Context(), req.Username, req.Email, req.Password, req.Phone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.tokens.SetCookie(w, token)
	writeSuccess(w, http.StatusCreated, "registered", map[string]interface{}{
		"user":  viewUser(user),
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, red.LoginKey(clientIP(r)), s.limits.LoginPerMinute) {
		metrics.IncAuthAttempt("login", "rate_limited")
		s.writeError(w, r, domain.ErrRateLimited)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.tokens.SetCookie(w, token)
	writeSuccess(w, http.StatusOK, "logged in", map[string]interface{}{
		"user":  viewUser(user),
		"token": token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.tokens.ClearCookie(w)
	writeSuccess(w, http.StatusOK, "logged out", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())
	writeSuccess(w, http.StatusOK, "ok", viewUser(subject))
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authUC.UpdateProfile(r.Context(), subject.ID, req.Username, req.Phone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "profile updated", viewUser(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.authUC.ChangePassword(r.Context(), subject.ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "password changed", nil)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
