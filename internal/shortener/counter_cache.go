package shortener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripping-alien/shortlink-sub000/internal/repository"
)

// CounterCache serves counter values from memory, allocating ranges from the
// store in jumpAhead-sized blocks so each allocation is one durable write.
// The durably recorded value is always the end of the allocated range, which
// means a crash can skip ids but never reuse one.
type CounterCache struct {
	mu          sync.Mutex
	store       repository.CounterStore
	counters    map[string]*counterEntry
	jumpAhead   int64
	writebackCh chan writebackRequest
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

type counterEntry struct {
	current   int64
	allocated int64
	dirty     bool
}

type writebackRequest struct {
	key   string
	value int64
}

// NewCounterCache creates a new counter cache over the given store
func NewCounterCache(store repository.CounterStore, jumpAhead int64) *CounterCache {
	if jumpAhead <= 0 {
		jumpAhead = 1
	}

	cache := &CounterCache{
		store:       store,
		counters:    make(map[string]*counterEntry),
		jumpAhead:   jumpAhead,
		writebackCh: make(chan writebackRequest, 100),
		stopCh:      make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.writebackWorker()

	return cache
}

// GetNextCounter returns the next counter value, allocating a new range from
// the store when the current one is exhausted.
func (c *CounterCache) GetNextCounter(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.counters[key]
	if !exists {
		stored, err := c.store.GetCounter(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("failed to read counter %s: %w", key, err)
		}

		entry = &counterEntry{
			current:   stored,
			allocated: stored + c.jumpAhead,
			dirty:     true,
		}
		c.counters[key] = entry
		c.enqueueWriteback(key, entry.allocated)
	}

	if entry.current >= entry.allocated {
		entry.allocated += c.jumpAhead
		entry.dirty = true
		c.enqueueWriteback(key, entry.allocated)
	}

	entry.current++
	return entry.current, nil
}

// SetCounter overrides a counter value
func (c *CounterCache) SetCounter(ctx context.Context, key string, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &counterEntry{
		current:   value,
		allocated: value + c.jumpAhead,
		dirty:     true,
	}
	c.counters[key] = entry
	c.enqueueWriteback(key, entry.allocated)

	return nil
}

// enqueueWriteback hands an allocation to the writeback worker without
// blocking; a full channel is tolerated because Close performs a final sync.
func (c *CounterCache) enqueueWriteback(key string, value int64) {
	select {
	case c.writebackCh <- writebackRequest{key: key, value: value}:
	default:
	}
}

func (c *CounterCache) writebackWorker() {
	defer c.wg.Done()

	write := func(req writebackRequest) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store.SetCounter(ctx, req.key, req.value); err != nil {
			logrus.WithError(err).WithField("counter", req.key).Error("counter writeback failed")
		}
	}

	for {
		select {
		case req := <-c.writebackCh:
			write(req)
		case <-c.stopCh:
			// Drain whatever is queued before exiting
			for {
				select {
				case req := <-c.writebackCh:
					write(req)
				default:
					return
				}
			}
		}
	}
}

// Sync durably writes all dirty allocations
func (c *CounterCache) Sync(ctx context.Context) error {
	c.mu.Lock()
	dirty := make(map[string]int64)
	for key, entry := range c.counters {
		if entry.dirty {
			dirty[key] = entry.allocated
		}
	}
	c.mu.Unlock()

	for key, value := range dirty {
		if err := c.store.SetCounter(ctx, key, value); err != nil {
			return fmt.Errorf("failed to sync counter %s: %w", key, err)
		}

		c.mu.Lock()
		if entry, exists := c.counters[key]; exists && entry.allocated == value {
			entry.dirty = false
		}
		c.mu.Unlock()
	}

	return nil
}

// Close stops the writeback worker and syncs all dirty allocations
func (c *CounterCache) Close() error {
	select {
	case <-c.stopCh:
		return nil
	default:
		close(c.stopCh)
	}

	c.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return c.Sync(ctx)
}

// Ensure CounterCache implements CounterProvider
var _ CounterProvider = (*CounterCache)(nil)
