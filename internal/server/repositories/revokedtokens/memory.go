package revokedtokens

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRepository is a lock-free blacklist over sync.Map. It never fails,
// so it cannot exercise the unavailable-store path.
type MemoryRepository struct {
	tokens sync.Map // token -> time.Time
	size   atomic.Int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Add(_ context.Context, token string, expiresAt time.Time) error {
	if _, loaded := r.tokens.LoadOrStore(token, expiresAt); !loaded {
		r.size.Add(1)
	}
	return nil
}

func (r *MemoryRepository) Exists(_ context.Context, token string) (bool, error) {
	_, ok := r.tokens.Load(token)
	return ok, nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, before time.Time, limit int) (int64, error) {
	var n int64
	r.tokens.Range(func(k, v any) bool {
		if n >= int64(limit) {
			return false
		}
		if v.(time.Time).After(before) {
			return true
		}
		if r.tokens.CompareAndDelete(k, v) {
			r.size.Add(-1)
			n++
		}
		return true
	})
	return n, nil
}

func (r *MemoryRepository) Count(context.Context) (int64, error) {
	return r.size.Load(), nil
}
