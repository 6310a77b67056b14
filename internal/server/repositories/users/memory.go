package users

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/google/uuid"
)

// MemoryStore holds users for the in-memory backend. Repositories created
// from it share the data.
type MemoryStore struct {
	byEmail map[string]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]models.User)}
}

type MemoryRepository struct {
	db    dbx.DBTX
	store *MemoryStore
}

func NewMemoryRepository(db dbx.DBTX, store *MemoryStore) *MemoryRepository {
	return &MemoryRepository{db: db, store: store}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	defer dbx.WriteLock(r.db)()

	if _, ok := r.store.byEmail[user.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	r.store.byEmail[user.Email] = clone(user)
	return user, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	defer dbx.ReadLock(r.db)()

	u, ok := r.store.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := clone(&u)
	return &c, nil
}

func clone(u *models.User) models.User {
	c := *u
	c.PasswordHash = slices.Clone(u.PasswordHash)
	c.Roles = slices.Clone(u.Roles)
	return c
}
