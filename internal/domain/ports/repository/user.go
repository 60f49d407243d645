package repository

import (
	"context"

	"teachshare/internal/domain/model"
)

// UserFilter narrows admin user listings. Zero values mean "no filter".
type UserFilter struct {
	Search         string // matches username or email, case-insensitive
	Status         string // "active" | "inactive"
	MembershipType string
	Role           string
}

// UserRepository is the port for the credential store.
type UserRepository interface {
	// Save inserts or updates a user. Unique violations on username/email map
	// to domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, tx Tx, email, username string) (bool, error)
	// AppendRedemption writes one audit-log entry. Entries are append-only.
	AppendRedemption(ctx context.Context, tx Tx, userID string, entry model.CodeRedemption) error
	ListRedemptions(ctx context.Context, tx Tx, userID string) ([]model.CodeRedemption, error)
	List(ctx context.Context, tx Tx, f UserFilter, limit, offset int) ([]*model.User, int, error)
}
