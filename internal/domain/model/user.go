package model

import (
	"net/mail"
	"strings"
	"time"

	"teachshare/internal/domain"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the persistent account record. PasswordHash is a bcrypt hash and is
// never serialized back to clients.
type User struct {
	ID           string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Membership   Membership
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CodeRedemption is one entry of the user's append-only redemption audit log.
// Entries are never mutated or removed once written.
type CodeRedemption struct {
	Code           string
	MembershipType MembershipType
	UsedAt         time.Time
}

func NewUser(id, username, email, passwordHash, phone string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        strings.TrimSpace(phone),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Membership:   FreeMembership(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Touch records a successful login.
func (u *User) Touch() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

func ValidateUsername(username string) error {
	n := len(strings.TrimSpace(username))
	if n < 3 || n > 50 {
		return domain.ErrInvalidArgument
	}
	return nil
}

func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return domain.ErrInvalidArgument
	}
	return nil
}
