package ledgerentries

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/google/uuid"
)

// MemoryStore holds entries in insertion order. byKey is indexed by
// account and idempotency key.
type MemoryStore struct {
	entries []models.LedgerEntry
	byKey   map[keyRef]int
}

type keyRef struct {
	account string
	key     string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: make(map[keyRef]int)}
}

type MemoryRepository struct {
	db    dbx.DBTX
	store *MemoryStore
}

func NewMemoryRepository(db dbx.DBTX, store *MemoryStore) *MemoryRepository {
	return &MemoryRepository{db: db, store: store}
}

func (r *MemoryRepository) Create(_ context.Context, e *models.LedgerEntry) (*models.LedgerEntry, error) {
	defer dbx.WriteLock(r.db)()

	ref := keyRef{account: e.KeyAccount(), key: e.IdempotencyKey}
	if e.IdempotencyKey != "" {
		if _, ok := r.store.byKey[ref]; ok {
			return nil, common.ErrAlreadyExists
		}
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	r.store.entries = append(r.store.entries, *e)
	if e.IdempotencyKey != "" {
		r.store.byKey[ref] = len(r.store.entries) - 1
	}
	return e, nil
}

func (r *MemoryRepository) GetByIdempotencyKey(_ context.Context, accountID, key string) (*models.LedgerEntry, error) {
	defer dbx.ReadLock(r.db)()

	i, ok := r.store.byKey[keyRef{account: accountID, key: key}]
	if !ok {
		return nil, common.ErrNotFound
	}
	e := r.store.entries[i]
	return &e, nil
}

func (r *MemoryRepository) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*models.LedgerEntry, error) {
	defer dbx.ReadLock(r.db)()

	var result []*models.LedgerEntry
	for _, e := range slices.Backward(r.store.entries) {
		if e.FromAccount != accountID && e.ToAccount != accountID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		if len(result) == limit {
			break
		}
		c := e
		result = append(result, &c)
	}
	return result, nil
}
