package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access denied")
	ErrMembershipRequired = errors.New("active membership required")
	ErrCodeNotFoundOrUsed = errors.New("activation code not found or already used")
	ErrCodeExpired        = errors.New("activation code has expired")
	ErrRateLimited        = errors.New("too many attempts, try again later")

	// Infra-level errors surfaced through repositories
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
