package cache

import (
	"context"
	"time"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// Cache is the resolve hot-path cache. Entries carry the link's expiry so
// liveness is still evaluated on every read; click increments are buffered
// in the entry until a flush persists them.
type Cache interface {
	// Get retrieves a cache entry by code
	Get(ctx context.Context, code string) (*domain.CacheEntry, bool)

	// Set stores a cache entry
	Set(ctx context.Context, code string, entry *domain.CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, code string) error

	// IncrementClicks buffers one click for a code
	IncrementClicks(ctx context.Context, code string) error

	// DirtyEntries returns entries with unflushed pending clicks
	DirtyEntries(ctx context.Context) (map[string]*domain.CacheEntry, error)

	// MarkFlushed zeroes a code's pending clicks after a successful flush
	MarkFlushed(ctx context.Context, code string) error

	// Close closes the cache connection (if applicable)
	Close() error
}

// FlushFunc persists buffered click counts; keyed by code with the pending
// delta for each.
type FlushFunc func(pending map[string]int64) error

// SyncableCache extends Cache with a background flush loop
type SyncableCache interface {
	Cache

	// StartBackgroundFlush starts flushing pending clicks on the given interval
	StartBackgroundFlush(ctx context.Context, interval time.Duration, flush FlushFunc) error

	// StopBackgroundFlush stops the flush loop, performing one final flush
	StopBackgroundFlush() error
}
