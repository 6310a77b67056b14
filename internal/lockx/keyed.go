// Package lockx provides per-key exclusive locks with bounded waits.
package lockx

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex hands out one exclusive lock per key. Locks on different keys
// never contend. Entries are dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock acquires key, waiting until ctx is done.
func (m *KeyedMutex) Lock(ctx context.Context, key string) error {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.drop(key, false)
		return fmt.Errorf("lock %q: %w", key, ctx.Err())
	}
}

// Unlock releases key. Unlocking a key that is not held panics.
func (m *KeyedMutex) Unlock(key string) {
	m.drop(key, true)
}

func (m *KeyedMutex) drop(key string, held bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[key]
	if !ok {
		panic("lockx: unlock of unknown key " + key)
	}
	if held {
		<-e.sem
	}
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

// LockOrdered acquires every key in ascending order, so two callers asking
// for the same set in any order cannot deadlock. Duplicates are collapsed.
// On failure nothing stays held. The returned func releases all keys.
func (m *KeyedMutex) LockOrdered(ctx context.Context, keys ...string) (func(), error) {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]string, 0, len(ordered))
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			m.Unlock(held[i])
		}
	}

	for _, k := range ordered {
		if err := m.Lock(ctx, k); err != nil {
			unlock()
			return nil, err
		}
		held = append(held, k)
	}

	return unlock, nil
}

// Len reports how many keys are currently held or awaited.
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
