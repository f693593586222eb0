package loader

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// resultCache keeps finished loads in memory until they expire.
type resultCache struct {
	retention time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	results map[uuid.UUID]*Result
}

func newResultCache(retention time.Duration) *resultCache {
	return &resultCache{
		retention: retention,
		now:       time.Now,
		results:   make(map[uuid.UUID]*Result),
	}
}

func (c *resultCache) put(r *Result) {
	c.mu.Lock()
	c.results[r.ID] = r
	c.mu.Unlock()
}

func (c *resultCache) get(id uuid.UUID) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.results[id]
	if !ok || c.expired(r) {
		return nil, false
	}
	return r, true
}

// recent returns unexpired results, newest first.
func (c *resultCache) recent(limit int) []*Result {
	c.mu.RLock()
	out := make([]*Result, 0, len(c.results))
	for _, r := range c.results {
		if !c.expired(r) {
			out = append(out, r)
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

func (c *resultCache) expired(r *Result) bool {
	return c.retention > 0 && c.now().Sub(r.FinishedAt) > c.retention
}

// purge drops expired results and reports how many were removed.
func (c *resultCache) purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for id, r := range c.results {
		if c.expired(r) {
			delete(c.results, id)
			n++
		}
	}
	return n
}

// runJanitor purges expired results every interval until ctx ends.
func (c *resultCache) runJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Debug("result janitor started", "interval", interval, "retention", c.retention)
	for {
		select {
		case <-ctx.Done():
			slog.Debug("result janitor stopped")
			return
		case <-ticker.C:
			if n := c.purge(); n > 0 {
				slog.Info("expired load results purged", "count", n)
			}
		}
	}
}
