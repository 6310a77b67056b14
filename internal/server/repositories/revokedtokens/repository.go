// Package revokedtokens is the token blacklist: tokens revoked before their
// natural expiry, kept until that expiry has passed.
package revokedtokens

import (
	"context"
	"time"
)

// Repository failures that mean the store could not be used are reported
// as common.ErrStoreUnavailable.
type Repository interface {
	// Add records token as revoked until expiresAt. Adding a token that is
	// already present is a no-op.
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	// DeleteExpired removes at most limit entries with expires_at <= before
	// and reports how many were removed.
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int64, error)
	Count(ctx context.Context) (int64, error)
}
