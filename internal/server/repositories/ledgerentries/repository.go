// Package ledgerentries stores the record of every balance movement.
package ledgerentries

import (
	"context"

	"github.com/dmitrijs2005/gowallet/internal/server/models"
)

type Repository interface {
	// Create inserts entry and fills in ID and CreatedAt. An idempotency
	// key already used by the entry's KeyAccount yields common.ErrAlreadyExists.
	Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)
	// GetByIdempotencyKey looks the key up among entries of accountID.
	// It returns common.ErrNotFound when the account never used the key.
	GetByIdempotencyKey(ctx context.Context, accountID, key string) (*models.LedgerEntry, error)
	// ListByAccount returns entries touching accountID, newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.LedgerEntry, error)
}
