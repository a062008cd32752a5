package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripping-alien/shortlink-sub000/internal/cache"
	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// Cache implements cache.SyncableCache with in-process storage
type Cache struct {
	data     map[string]*domain.CacheEntry
	mutex    sync.RWMutex
	stopChan chan struct{}
	running  bool
}

// New creates a new in-memory cache
func New() *Cache {
	return &Cache{
		data:     make(map[string]*domain.CacheEntry),
		stopChan: make(chan struct{}),
	}
}

// Get retrieves a cache entry by code
func (c *Cache) Get(ctx context.Context, code string) (*domain.CacheEntry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[code]
	if !exists {
		return nil, false
	}

	copied := *entry
	return &copied, true
}

// Set stores a cache entry
func (c *Cache) Set(ctx context.Context, code string, entry *domain.CacheEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	copied := *entry
	c.data[code] = &copied
	return nil
}

// Delete removes a cache entry
func (c *Cache) Delete(ctx context.Context, code string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, code)
	return nil
}

// IncrementClicks buffers one click for a code
func (c *Cache) IncrementClicks(ctx context.Context, code string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, exists := c.data[code]; exists {
		entry.PendingClicks++
		entry.LastAccessAt = time.Now()
		entry.Dirty = true
	}

	return nil
}

// DirtyEntries returns entries with unflushed pending clicks
func (c *Cache) DirtyEntries(ctx context.Context) (map[string]*domain.CacheEntry, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	dirty := make(map[string]*domain.CacheEntry)
	for code, entry := range c.data {
		if entry.Dirty {
			copied := *entry
			dirty[code] = &copied
		}
	}

	return dirty, nil
}

// MarkFlushed zeroes a code's pending clicks after a successful flush
func (c *Cache) MarkFlushed(ctx context.Context, code string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, exists := c.data[code]; exists {
		entry.PendingClicks = 0
		entry.Dirty = false
	}

	return nil
}

// StartBackgroundFlush starts flushing pending clicks on the given interval
func (c *Cache) StartBackgroundFlush(ctx context.Context, interval time.Duration, flush cache.FlushFunc) error {
	c.mutex.Lock()
	if c.running {
		c.mutex.Unlock()
		return nil
	}
	c.running = true
	c.mutex.Unlock()

	go c.flushLoop(ctx, interval, flush)
	return nil
}

// StopBackgroundFlush stops the flush loop, performing one final flush
func (c *Cache) StopBackgroundFlush() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.running {
		return nil
	}

	c.running = false
	close(c.stopChan)

	// New channel so the cache can be restarted
	c.stopChan = make(chan struct{})
	return nil
}

func (c *Cache) flushLoop(ctx context.Context, interval time.Duration, flush cache.FlushFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.mutex.RLock()
	stopChan := c.stopChan
	c.mutex.RUnlock()

	for {
		select {
		case <-ticker.C:
			c.flushPending(ctx, flush)
		case <-stopChan:
			c.flushPending(ctx, flush)
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Cache) flushPending(ctx context.Context, flush cache.FlushFunc) {
	dirty, err := c.DirtyEntries(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to collect dirty cache entries")
		return
	}
	if len(dirty) == 0 {
		return
	}

	pending := make(map[string]int64, len(dirty))
	for code, entry := range dirty {
		pending[code] = entry.PendingClicks
	}

	if err := flush(pending); err != nil {
		logrus.WithError(err).Error("failed to flush pending clicks")
		return
	}

	for code := range dirty {
		if err := c.MarkFlushed(ctx, code); err != nil {
			logrus.WithError(err).WithField("code", code).Error("failed to mark cache entry flushed")
		}
	}
}

// Close stops the background flush
func (c *Cache) Close() error {
	return c.StopBackgroundFlush()
}

// Ensure Cache implements the interfaces
var _ cache.Cache = (*Cache)(nil)
var _ cache.SyncableCache = (*Cache)(nil)
