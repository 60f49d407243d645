package repository

import (
	"context"
	"time"

	"teachshare/internal/domain/model"
)

// CodeFilter narrows admin code listings and exports.
type CodeFilter struct {
	Status string
	Batch  string
	Search string // matches the code token
}

// ActivationCodeRepository is the port for the code ledger.
type ActivationCodeRepository interface {
	// Save inserts a freshly issued code. A duplicate token maps to
	// domain.ErrAlreadyExists so issuance can retry with a new one.
	Save(ctx context.Context, tx Tx, code *model.ActivationCode) error

	// FindUnusedByCode looks up a code token with status=unused. Anything else
	// (missing, used, expired) is domain.ErrNotFound: the redemption flow
	// deliberately conflates those cases.
	FindUnusedByCode(ctx context.Context, tx Tx, code string) (*model.ActivationCode, error)

	// MarkUsed flips unused -> used in a single conditional update. Returns
	// false when the code was no longer unused, which is how a concurrent
	// second redeemer loses the race.
	MarkUsed(ctx context.Context, tx Tx, codeID, userID string, at time.Time) (bool, error)

	// MarkExpired flips unused -> expired. Same conditional-update semantics.
	MarkExpired(ctx context.Context, tx Tx, codeID string) (bool, error)

	List(ctx context.Context, tx Tx, f CodeFilter, limit, offset int) ([]*model.ActivationCode, int, error)

	// FindForExport selects by explicit token list when non-empty, else by
	// batch, joined with the redeemer's username.
	FindForExport(ctx context.Context, tx Tx, codes []string, batch string) ([]model.ActivationCodeExport, error)
}
