package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/logger"
	redisstore "github.com/MrSnakeDoc/navsite/internal/store/redis"
)

// DefaultGCInterval is how often stale favicon hit counters are pruned.
const DefaultGCInterval = time.Hour

// GarbageCollector drops favicon hit counters whose icon expired from the
// Redis cache, so the counter hash only tracks cached hosts.
type GarbageCollector struct {
	store    *redisstore.Store
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewGarbageCollector creates a collector. A zero interval uses
// DefaultGCInterval.
func NewGarbageCollector(store *redisstore.Store, log logger.Logger, interval time.Duration) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &GarbageCollector{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic collection.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed", logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed", logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector.
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect prunes the counters once.
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	removed, err := gc.store.PruneHits(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		gc.logger.Info("garbage collected favicon hit counters", logger.Int("removed", removed))
	} else {
		gc.logger.Debug("no favicon hit counters to collect")
	}
	return nil
}
