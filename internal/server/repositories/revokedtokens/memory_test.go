package revokedtokens

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, r.Add(ctx, "a", exp))
	require.NoError(t, r.Add(ctx, "a", exp.Add(time.Hour)))

	n, _ := r.Count(ctx)
	assert.Equal(t, int64(1), n)

	ok, _ := r.Exists(ctx, "a")
	assert.True(t, ok)
	ok, _ = r.Exists(ctx, "b")
	assert.False(t, ok)
}

func TestMemory_DeleteExpiredBoundary(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, r.Add(ctx, "past", now.Add(-time.Minute)))
	require.NoError(t, r.Add(ctx, "exact", now))
	require.NoError(t, r.Add(ctx, "future", now.Add(time.Nanosecond)))

	n, err := r.DeleteExpired(ctx, now, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// second call finds nothing new
	n, err = r.DeleteExpired(ctx, now, 100)
	require.NoError(t, err)
	assert.Zero(t, n)

	for tok, want := range map[string]bool{"past": false, "exact": false, "future": true} {
		ok, _ := r.Exists(ctx, tok)
		assert.Equal(t, want, ok, tok)
	}
	size, _ := r.Count(ctx)
	assert.Equal(t, int64(1), size)
}

func TestMemory_DeleteExpiredRespectsLimit(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	past := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, r.Add(ctx, fmt.Sprintf("t%d", i), past))
	}

	n, err := r.DeleteExpired(ctx, time.Now(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	size, _ := r.Count(ctx)
	assert.Equal(t, int64(6), size)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			_ = r.Add(ctx, fmt.Sprintf("old%d", i), now.Add(-time.Second))
			_ = r.Add(ctx, fmt.Sprintf("live%d", i), now.Add(time.Hour))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Exists(ctx, fmt.Sprintf("live%d", i))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.DeleteExpired(ctx, now, 10)
		}()
	}
	wg.Wait()

	_, err := r.DeleteExpired(ctx, now, 1000)
	require.NoError(t, err)

	size, _ := r.Count(ctx)
	assert.Equal(t, int64(50), size)
	for i := 0; i < 50; i++ {
		ok, _ := r.Exists(ctx, fmt.Sprintf("live%d", i))
		assert.True(t, ok)
	}
}
