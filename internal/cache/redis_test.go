package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires Redis on localhost:6379; skipped otherwise.
const testRedisAddr = "localhost:6379"

func setupRedisCache(t *testing.T, prefix string) *RedisCache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	c := NewRedis(client, Config{Prefix: prefix, TTL: time.Minute})
	require.NoError(t, c.InvalidateAll(ctx))
	t.Cleanup(func() {
		_ = c.InvalidateAll(context.Background())
		_ = c.Close()
	})
	return c
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c := setupRedisCache(t, "test:catalog:")
	ctx := context.Background()

	var got page
	hit, err := c.Get(ctx, "browse:part:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "browse:part:1", page{IDs: []int64{4}, Total: 1}))
	hit, err = c.Get(ctx, "browse:part:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int64{4}, got.IDs)
	assert.Equal(t, "redis", c.Stats().Backend)
}

func TestRedisCacheInvalidateAllKeepsOtherPrefixes(t *testing.T) {
	c := setupRedisCache(t, "test:catalog:")
	other := setupRedisCache(t, "test:other:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))
	require.NoError(t, other.Set(ctx, "a", 3))

	require.NoError(t, c.InvalidateAll(ctx))

	var n int
	hit, err := c.Get(ctx, "a", &n)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = other.Get(ctx, "a", &n)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, n)
}

func TestNewRedisDefaultsTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	defer client.Close()

	c := NewRedis(client, Config{Prefix: "x:"})
	assert.Equal(t, DefaultTTL, c.cfg.TTL)
}

func TestRedisGenerationSurvivesInvalidateAll(t *testing.T) {
	c := setupRedisCache(t, "test:gen:")
	ctx := context.Background()
	t.Cleanup(func() { _ = c.client.Del(context.Background(), "test:gen:"+generationKey).Err() })
	require.NoError(t, c.client.Del(ctx, "test:gen:"+generationKey).Err())

	g, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), g)

	next, err := c.NextGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)

	require.NoError(t, c.Set(ctx, "g1:browse", 1))
	require.NoError(t, c.InvalidateAll(ctx))

	g, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), g)

	var n int
	hit, err := c.Get(ctx, "g1:browse", &n)
	require.NoError(t, err)
	assert.False(t, hit)
}
