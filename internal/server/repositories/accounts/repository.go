// Package accounts stores wallet accounts, one per subject, together with
// the subject's current refresh token.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gowallet/internal/server/models"
)

type Repository interface {
	// Create inserts a zero-balance account. A second account for the same
	// subject yields common.ErrAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Exists(ctx context.Context, subject string) (bool, error)
	// GetBySubject and GetForUpdate return common.ErrNotFound when absent.
	GetBySubject(ctx context.Context, subject string) (*models.Account, error)
	// GetForUpdate reads the account by id and holds its row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.Account, error)
	SetBalance(ctx context.Context, id string, balance int64) error
	// SetRefreshToken overwrites the stored refresh token; "" clears it.
	SetRefreshToken(ctx context.Context, subject, token string) error
}
