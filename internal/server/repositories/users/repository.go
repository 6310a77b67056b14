// Package users stores registered identities and their role sets.
package users

import (
	"context"

	"github.com/dmitrijs2005/gowallet/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt.
	// A taken email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail returns common.ErrNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
