package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(dbx.NewMemConn(), NewMemoryStore())

	u, err := repo.Create(ctx, &models.User{Email: "ana@example.com", PasswordHash: []byte("h"), Roles: []string{common.RoleUser}})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = repo.Create(ctx, &models.User{Email: "ana@example.com"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []string{common.RoleUser}, got.Roles)

	// returned values are copies
	got.Roles[0] = common.RoleAdmin
	again, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, common.RoleUser, again.Roles[0])

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}
