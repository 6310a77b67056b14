// Package common defines shared constants and sentinel errors used across
// the wallet server, its repositories and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrStoreUnavailable reports that a backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrLockTimeout is returned when exclusive access could not be obtained in time.
	ErrLockTimeout = errors.New("lock wait timeout")

	ErrInternal = errors.New("internal error")

	// Session errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingToken       = errors.New("missing token")
	ErrStaleRefreshToken  = errors.New("stale refresh token")
	ErrUnknownAccount     = errors.New("unknown account")

	// Ledger errors.
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrSameAccount          = errors.New("source and destination accounts are the same")
	ErrBalanceOverflow      = errors.New("balance would exceed the maximum")

	// ErrIdempotencyConflict reports a key reused for a different request.
	ErrIdempotencyConflict = errors.New("idempotency key already used for a different request")
)
