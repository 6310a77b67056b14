package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/google/uuid"
)

// MemoryStore holds accounts for the in-memory backend.
type MemoryStore struct {
	byID      map[string]*models.Account
	bySubject map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]*models.Account),
		bySubject: make(map[string]string),
	}
}

// MemoryRepository serves accounts from a MemoryStore. Row locks are not
// modelled: GetForUpdate is a plain read and callers serialize writers.
type MemoryRepository struct {
	db    dbx.DBTX
	store *MemoryStore
}

func NewMemoryRepository(db dbx.DBTX, store *MemoryStore) *MemoryRepository {
	return &MemoryRepository{db: db, store: store}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	defer dbx.WriteLock(r.db)()

	if _, ok := r.store.bySubject[account.Subject]; ok {
		return nil, common.ErrAlreadyExists
	}
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now()
	c := *account
	r.store.byID[c.ID] = &c
	r.store.bySubject[c.Subject] = c.ID
	return account, nil
}

func (r *MemoryRepository) Exists(_ context.Context, subject string) (bool, error) {
	defer dbx.ReadLock(r.db)()

	_, ok := r.store.bySubject[subject]
	return ok, nil
}

func (r *MemoryRepository) GetBySubject(_ context.Context, subject string) (*models.Account, error) {
	defer dbx.ReadLock(r.db)()

	id, ok := r.store.bySubject[subject]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *r.store.byID[id]
	return &c, nil
}

func (r *MemoryRepository) GetForUpdate(_ context.Context, id string) (*models.Account, error) {
	defer dbx.ReadLock(r.db)()

	a, ok := r.store.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *MemoryRepository) SetBalance(_ context.Context, id string, balance int64) error {
	defer dbx.WriteLock(r.db)()

	a, ok := r.store.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	a.Balance = balance
	return nil
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, subject, token string) error {
	defer dbx.WriteLock(r.db)()

	id, ok := r.store.bySubject[subject]
	if !ok {
		return common.ErrNotFound
	}
	r.store.byID[id].RefreshToken = token
	return nil
}
