package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tripping-alien/shortlink-sub000/internal/cache"
	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// SyncableCache is a mock implementation of cache.SyncableCache
type SyncableCache struct {
	mock.Mock
}

// Get retrieves a cache entry by code
func (m *SyncableCache) Get(ctx context.Context, code string) (*domain.CacheEntry, bool) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.CacheEntry), args.Bool(1)
}

// Set stores a cache entry
func (m *SyncableCache) Set(ctx context.Context, code string, entry *domain.CacheEntry) error {
	args := m.Called(ctx, code, entry)
	return args.Error(0)
}

// Delete removes a cache entry
func (m *SyncableCache) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// IncrementClicks buffers one click for a code
func (m *SyncableCache) IncrementClicks(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// DirtyEntries returns entries with unflushed pending clicks
func (m *SyncableCache) DirtyEntries(ctx context.Context) (map[string]*domain.CacheEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.CacheEntry), args.Error(1)
}

// MarkFlushed zeroes a code's pending clicks after a successful flush
func (m *SyncableCache) MarkFlushed(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// StartBackgroundFlush starts flushing pending clicks on the given interval
func (m *SyncableCache) StartBackgroundFlush(ctx context.Context, interval time.Duration, flush cache.FlushFunc) error {
	args := m.Called(ctx, interval, flush)
	return args.Error(0)
}

// StopBackgroundFlush stops the flush loop
func (m *SyncableCache) StopBackgroundFlush() error {
	args := m.Called()
	return args.Error(0)
}

// Close closes the cache connection
func (m *SyncableCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
