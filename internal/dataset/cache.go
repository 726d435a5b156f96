// Package dataset holds normalized board data in memory with a fixed TTL,
// shared across requests. Concurrent refreshes of the same dataset key are
// collapsed into a single upstream fetch.
package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kalambet/boardbi/internal/normalize"
)

// DefaultTTL is the cache lifetime used when none is configured.
const DefaultTTL = 5 * time.Minute

// FetchFunc produces a fresh batch for a dataset key on cache miss.
type FetchFunc func(ctx context.Context) (normalize.Batch, error)

type entry struct {
	batch     normalize.Batch
	createdAt time.Time
}

// Cache is a TTL cache keyed by dataset identifier. Expiry is checked at
// read time; there is no background eviction. Construct at process start,
// pass by reference, discard at process stop.
type Cache struct {
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

// New creates a Cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached batch for key, refreshing it through fetch when
// missing or expired. Concurrent callers for the same key during a refresh
// share one upstream fetch; different keys refresh independently.
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) (normalize.Batch, error) {
	if batch, ok := c.fresh(key); ok {
		return batch, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have refreshed the entry while this
		// caller waited on the group lock.
		if batch, ok := c.fresh(key); ok {
			return batch, nil
		}

		// The fetch outlives a dropped caller on purpose: its result
		// populates the shared cache for subsequent requests.
		batch, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return normalize.Batch{}, err
		}

		c.mu.Lock()
		c.entries[key] = entry{batch: batch, createdAt: time.Now()}
		c.mu.Unlock()
		return batch, nil
	})
	if err != nil {
		return normalize.Batch{}, err
	}
	if shared {
		slog.Debug("cache refresh shared between concurrent callers", "key", key)
	}
	return v.(normalize.Batch), nil
}

// fresh returns the entry for key if it exists and is within its TTL.
func (c *Cache) fresh(key string) (normalize.Batch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Since(e.createdAt) >= c.ttl {
		return normalize.Batch{}, false
	}
	return e.batch, true
}

// Stale returns the most recent batch for key regardless of expiry, along
// with its age. Used for degraded responses when a refresh fails.
func (c *Cache) Stale(key string) (normalize.Batch, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return normalize.Batch{}, 0, false
	}
	return e.batch, time.Since(e.createdAt), true
}

// Invalidate forces the next Get for key to refetch.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every cached dataset.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
