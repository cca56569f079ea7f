package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares browse results between API instances. Every key lives under
// prefix so InvalidateAll can SCAN them without touching unrelated data. The
// generation counter lives under the same prefix and survives InvalidateAll.
type RedisCache struct {
	client *redis.Client
	cfg    Config
	stats  counters
}

const generationKey = "__generation"

func NewRedis(client *redis.Client, cfg Config) *RedisCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &RedisCache{client: client, cfg: cfg}
}

// DialRedis connects and pings so startup can fall back to memory when Redis is down.
func DialRedis(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return NewRedis(client, cfg), nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.cfg.Prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.misses.Add(1)
			return false, nil
		}
		c.stats.errors.Add(1)
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.stats.errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	c.stats.hits.Add(1)
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.cfg.Prefix+key, data, c.cfg.TTL).Err(); err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}
	c.stats.sets.Add(1)
	return nil
}

func (c *RedisCache) Generation(ctx context.Context) (uint64, error) {
	g, err := c.client.Get(ctx, c.cfg.Prefix+generationKey).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		c.stats.errors.Add(1)
		return 0, fmt.Errorf("cache generation error: %w", err)
	}
	return g, nil
}

func (c *RedisCache) NextGeneration(ctx context.Context) (uint64, error) {
	g, err := c.client.Incr(ctx, c.cfg.Prefix+generationKey).Uint64()
	if err != nil {
		c.stats.errors.Add(1)
		return 0, fmt.Errorf("cache generation error: %w", err)
	}
	return g, nil
}

func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.cfg.Prefix+"*", 100).Result()
		if err != nil {
			c.stats.errors.Add(1)
			return fmt.Errorf("cache scan error: %w", err)
		}
		keys = slices.DeleteFunc(keys, func(k string) bool { return k == c.cfg.Prefix+generationKey })
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.stats.errors.Add(1)
				return fmt.Errorf("cache delete error: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.stats.deletes.Add(uint64(deleted))
	return nil
}

func (c *RedisCache) Stats() StatsSnapshot { return c.stats.snapshot("redis") }

func (c *RedisCache) Close() error { return c.client.Close() }
