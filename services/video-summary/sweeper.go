package videosummary

import (
	"context"
	"fmt"
	"time"

	"summary-stack/shared/scheduler"
	"summary-stack/shared/storage"
)

// SweepMetrics reports the outcome of one cache sweep.
type SweepMetrics struct {
	Removed   int
	Remaining int
	SizeMB    float64
}

func (m SweepMetrics) GetSummary() string {
	return fmt.Sprintf("removed %d expired records, %d remaining (%.2f MB)", m.Removed, m.Remaining, m.SizeMB)
}

// CacheSweeper is a scheduler job that evicts expired cache records.
type CacheSweeper struct {
	cache *storage.CacheStore
}

func NewCacheSweeper(cache *storage.CacheStore) *CacheSweeper {
	return &CacheSweeper{cache: cache}
}

func (c *CacheSweeper) Name() string {
	return "cache-sweeper"
}

func (c *CacheSweeper) RunOnce(ctx context.Context, events *scheduler.JobEvents) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	removed := c.cache.EvictExpired()
	stats := c.cache.Stats()
	metrics := SweepMetrics{
		Removed:   removed,
		Remaining: stats.Total,
		SizeMB:    stats.TotalSizeMB(),
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(start))
	}
	return nil
}
