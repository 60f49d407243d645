package api

import (
	"net/http"
	"strings"
	"time"

	"teachshare/internal/domain"
	"teachshare/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

type TokenConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

// TokenManager mints and verifies bearer credentials. The token carries only
// the user identifier; role and membership are always re-read from storage.
type TokenManager struct{ cfg TokenConfig }

var _ usecase.TokenSigner = (*TokenManager)(nil)

func NewTokenManager(secret, cookieName string, secure bool, ttl time.Duration) *TokenManager {
	return &TokenManager{cfg: TokenConfig{
		HMACSecret:   []byte(secret),
		CookieName:   cookieName,
		SecureCookie: secure, // true in prod (TLS)
		TTL:          ttl,
	}}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func (m *TokenManager) Sign(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.cfg.HMACSecret)
}

// Verify parses a signed token and returns the subject user ID.
func (m *TokenManager) Verify(tok string) (string, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return m.cfg.HMACSecret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// FromRequest extracts the raw credential. The Authorization header wins over
// the cookie when both are present.
func (m *TokenManager) FromRequest(r *http.Request) (string, bool) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return strings.TrimSpace(hdr[7:]), true
		}
	}
	if c, err := r.Cookie(m.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func (m *TokenManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (m *TokenManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
