package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

func TestCache_GetSet(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	t.Run("miss on empty cache", func(t *testing.T) {
		_, ok := c.Get(ctx, "missing")
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		require.NoError(t, c.Set(ctx, "abc1234", &domain.CacheEntry{
			TargetURL: "https://example.com",
			ExpiresAt: &expiry,
		}))

		entry, ok := c.Get(ctx, "abc1234")
		require.True(t, ok)
		assert.Equal(t, "https://example.com", entry.TargetURL)
		require.NotNil(t, entry.ExpiresAt)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		entry, ok := c.Get(ctx, "abc1234")
		require.True(t, ok)
		entry.TargetURL = "https://tampered.example.com"

		again, ok := c.Get(ctx, "abc1234")
		require.True(t, ok)
		assert.Equal(t, "https://example.com", again.TargetURL)
	})
}

func TestCache_Delete(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc1234", &domain.CacheEntry{TargetURL: "https://example.com"}))
	require.NoError(t, c.Delete(ctx, "abc1234"))

	_, ok := c.Get(ctx, "abc1234")
	assert.False(t, ok)

	// Deleting an absent entry is not an error
	assert.NoError(t, c.Delete(ctx, "missing"))
}

func TestCache_IncrementClicks(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc1234", &domain.CacheEntry{TargetURL: "https://example.com"}))

	require.NoError(t, c.IncrementClicks(ctx, "abc1234"))
	require.NoError(t, c.IncrementClicks(ctx, "abc1234"))

	entry, ok := c.Get(ctx, "abc1234")
	require.True(t, ok)
	assert.Equal(t, int64(2), entry.PendingClicks)
	assert.True(t, entry.Dirty)

	// Incrementing an uncached code is a no-op
	assert.NoError(t, c.IncrementClicks(ctx, "missing"))
}

func TestCache_DirtyEntriesAndMarkFlushed(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dirty01", &domain.CacheEntry{TargetURL: "https://a.example.com"}))
	require.NoError(t, c.Set(ctx, "clean01", &domain.CacheEntry{TargetURL: "https://b.example.com"}))
	require.NoError(t, c.IncrementClicks(ctx, "dirty01"))

	dirty, err := c.DirtyEntries(ctx)
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Equal(t, int64(1), dirty["dirty01"].PendingClicks)

	require.NoError(t, c.MarkFlushed(ctx, "dirty01"))

	dirty, err = c.DirtyEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, dirty)

	entry, ok := c.Get(ctx, "dirty01")
	require.True(t, ok)
	assert.Zero(t, entry.PendingClicks)
}

func TestCache_BackgroundFlush(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc1234", &domain.CacheEntry{TargetURL: "https://example.com"}))
	require.NoError(t, c.IncrementClicks(ctx, "abc1234"))

	var mu sync.Mutex
	flushed := make(map[string]int64)

	require.NoError(t, c.StartBackgroundFlush(ctx, 10*time.Millisecond, func(pending map[string]int64) error {
		mu.Lock()
		defer mu.Unlock()
		for code, n := range pending {
			flushed[code] += n
		}
		return nil
	}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return flushed["abc1234"] == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, c.StopBackgroundFlush())

	// Flushed entries are marked clean
	dirty, err := c.DirtyEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestCache_StopFlushesFinalPending(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc1234", &domain.CacheEntry{TargetURL: "https://example.com"}))

	var mu sync.Mutex
	flushed := make(map[string]int64)

	require.NoError(t, c.StartBackgroundFlush(ctx, time.Hour, func(pending map[string]int64) error {
		mu.Lock()
		defer mu.Unlock()
		for code, n := range pending {
			flushed[code] += n
		}
		return nil
	}))

	require.NoError(t, c.IncrementClicks(ctx, "abc1234"))
	require.NoError(t, c.StopBackgroundFlush())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return flushed["abc1234"] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc1234", &domain.CacheEntry{TargetURL: "https://example.com"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.IncrementClicks(ctx, "abc1234")
			_, _ = c.Get(ctx, "abc1234")
		}()
	}
	wg.Wait()

	entry, ok := c.Get(ctx, "abc1234")
	require.True(t, ok)
	assert.Equal(t, int64(50), entry.PendingClicks)
}
