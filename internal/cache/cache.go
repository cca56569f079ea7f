// Package cache holds browse results keyed by their query signature.
package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Cache is a JSON value cache. Get reports a miss as (false, nil).
//
// Generation is a counter kept next to the entries. Callers put it in their
// keys and call NextGeneration before InvalidateAll; every reader sharing the
// backend then stops seeing entries written under an older generation, even
// ones filled after the delete.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidateAll(ctx context.Context) error
	Generation(ctx context.Context) (uint64, error)
	NextGeneration(ctx context.Context) (uint64, error)
	Stats() StatsSnapshot
}

// Config holds cache configuration.
type Config struct {
	RedisAddr string
	Prefix    string
	TTL       time.Duration
}

const DefaultTTL = 5 * time.Minute

type counters struct {
	hits, misses, sets, deletes, errors atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Backend   string  `json:"backend"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Sets      uint64  `json:"sets"`
	Deletes   uint64  `json:"deletes"`
	Errors    uint64  `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
	TotalGets uint64  `json:"total_gets"`
}

func (c *counters) snapshot(backend string) StatsSnapshot {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var rate float64
	if total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return StatsSnapshot{
		Backend:   backend,
		Hits:      hits,
		Misses:    misses,
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Errors:    c.errors.Load(),
		HitRate:   rate,
		TotalGets: total,
	}
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
