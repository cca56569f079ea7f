package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryCache is the in-process backend used when no Redis address is configured.
// Values are stored as JSON so callers get the same copy semantics as with Redis.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	gen     atomic.Uint64
	stats   counters
}

func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Generation(context.Context) (uint64, error) { return c.gen.Load(), nil }

func (c *MemoryCache) NextGeneration(context.Context) (uint64, error) { return c.gen.Add(1), nil }

func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expires) {
		if ok {
			c.mu.Lock()
			if cur, still := c.entries[key]; still && !c.now().Before(cur.expires) {
				delete(c.entries, key)
			}
			c.mu.Unlock()
		}
		c.stats.misses.Add(1)
		return false, nil
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		c.stats.errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	c.stats.hits.Add(1)
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{data: data, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()

	c.stats.sets.Add(1)
	return nil
}

func (c *MemoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = map[string]memoryEntry{}
	c.mu.Unlock()

	c.stats.deletes.Add(uint64(n))
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Stats() StatsSnapshot { return c.stats.snapshot("memory") }
