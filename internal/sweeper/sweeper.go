package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripping-alien/shortlink-sub000/internal/metrics"
)

// ExpiredDeleter bulk-deletes records whose expiry is at or before the
// given instant, returning how many were removed.
type ExpiredDeleter interface {
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically removes expired link records from the store. A cycle
// failure is logged and the next cycle runs as scheduled; expired records
// are already unreachable through resolution, so the sweep only reclaims
// storage.
type Sweeper struct {
	store    ExpiredDeleter
	interval time.Duration

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a sweeper that runs one cleanup cycle per interval
func New(store ExpiredDeleter, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background sweep loop
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)

	logrus.WithField("interval", s.interval).Info("sweeper started")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep runs one cleanup cycle
func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()

	deleted, err := s.store.DeleteExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		metrics.SweepErrors.Inc()
		logrus.WithError(err).Warn("sweep cycle failed")
		return
	}

	metrics.SweptLinks.Add(float64(deleted))

	if deleted > 0 {
		logrus.WithFields(logrus.Fields{
			"deleted":  deleted,
			"duration": time.Since(start),
		}).Info("swept expired links")
	}
}

// Stop halts the sweep loop, waiting up to grace for an in-flight cycle
func (s *Sweeper) Stop(grace time.Duration) {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("sweeper stopped")
	case <-time.After(grace):
		logrus.Warn("sweeper did not stop within grace period")
	}
}
