// Package redis implements the resolve cache on a Redis instance so multiple
// server processes can share the hot path.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tripping-alien/shortlink-sub000/internal/cache"
	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

const (
	entryKeyPrefix = "link:"
	clicksPrefix   = "clicks:"
	dirtySetKey    = "links:dirty"

	// defaultEntryTTL bounds cache residency for never-expiring links
	defaultEntryTTL = 24 * time.Hour
)

// Cache implements cache.SyncableCache backed by Redis
type Cache struct {
	client *redis.Client

	mutex    sync.Mutex
	stopChan chan struct{}
	running  bool
}

// New creates a Redis cache and verifies connectivity
func New(ctx context.Context, addr string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Cache{
		client:   client,
		stopChan: make(chan struct{}),
	}, nil
}

func entryTTL(entry *domain.CacheEntry) time.Duration {
	if entry.ExpiresAt == nil {
		return defaultEntryTTL
	}
	ttl := time.Until(*entry.ExpiresAt)
	if ttl <= 0 {
		// Keep expired entries briefly so resolve can answer Expired without
		// a store round trip
		return time.Minute
	}
	if ttl > defaultEntryTTL {
		return defaultEntryTTL
	}
	return ttl
}

// Get retrieves a cache entry by code
func (c *Cache) Get(ctx context.Context, code string) (*domain.CacheEntry, bool) {
	payload, err := c.client.Get(ctx, entryKeyPrefix+code).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).WithField("code", code).Debug("redis cache read failed")
		}
		return nil, false
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		logrus.WithError(err).WithField("code", code).Warn("corrupt redis cache entry, dropping")
		c.client.Del(ctx, entryKeyPrefix+code)
		return nil, false
	}

	if pending, err := c.client.Get(ctx, clicksPrefix+code).Int64(); err == nil {
		entry.PendingClicks = pending
		entry.Dirty = pending > 0
	}

	return &entry, true
}

// Set stores a cache entry
func (c *Cache) Set(ctx context.Context, code string, entry *domain.CacheEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := c.client.Set(ctx, entryKeyPrefix+code, payload, entryTTL(entry)).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if entry.PendingClicks > 0 {
		pipe := c.client.TxPipeline()
		pipe.Set(ctx, clicksPrefix+code, entry.PendingClicks, 0)
		pipe.SAdd(ctx, dirtySetKey, code)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to record pending clicks: %w", err)
		}
	}

	return nil
}

// Delete removes a cache entry
func (c *Cache) Delete(ctx context.Context, code string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, entryKeyPrefix+code, clicksPrefix+code)
	pipe.SRem(ctx, dirtySetKey, code)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// IncrementClicks buffers one click for a code
func (c *Cache) IncrementClicks(ctx context.Context, code string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, clicksPrefix+code)
	pipe.SAdd(ctx, dirtySetKey, code)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	return nil
}

// DirtyEntries returns entries with unflushed pending clicks
func (c *Cache) DirtyEntries(ctx context.Context) (map[string]*domain.CacheEntry, error) {
	codes, err := c.client.SMembers(ctx, dirtySetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dirty set: %w", err)
	}

	dirty := make(map[string]*domain.CacheEntry, len(codes))
	for _, code := range codes {
		pending, err := c.client.Get(ctx, clicksPrefix+code).Int64()
		if err != nil || pending == 0 {
			continue
		}
		entry, ok := c.Get(ctx, code)
		if !ok {
			entry = &domain.CacheEntry{}
		}
		entry.PendingClicks = pending
		entry.Dirty = true
		dirty[code] = entry
	}

	return dirty, nil
}

// MarkFlushed zeroes a code's pending clicks after a successful flush
func (c *Cache) MarkFlushed(ctx context.Context, code string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, clicksPrefix+code)
	pipe.SRem(ctx, dirtySetKey, code)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark entry flushed: %w", err)
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
	stopChan := c.stopChan
	c.mutex.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

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
	}()

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
	c.stopChan = make(chan struct{})
	return nil
}

func (c *Cache) flushPending(ctx context.Context, flush cache.FlushFunc) {
	dirty, err := c.DirtyEntries(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to collect dirty redis entries")
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
			logrus.WithError(err).WithField("code", code).Error("failed to mark redis entry flushed")
		}
	}
}

// Close stops the flush loop and closes the connection
func (c *Cache) Close() error {
	if err := c.StopBackgroundFlush(); err != nil {
		return err
	}
	return c.client.Close()
}

// Ensure Cache implements the interfaces
var _ cache.Cache = (*Cache)(nil)
var _ cache.SyncableCache = (*Cache)(nil)
