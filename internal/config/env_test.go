package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var envKeys = []string{
	"APP_ADDR", "GIN_MODE", "LOG_LEVEL", "DB_DSN", "REDIS_ADDR", "CACHE_PREFIX",
	"CACHE_TTL", "NATS_URL", "JWT_SECRET", "CORS_ALLOWED_ORIGINS", "DEFAULT_PAGE_SIZE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	clearEnv(t)
	env := LoadEnv()

	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, "info", env.LogLevel)
	assert.Equal(t, "catalog:", env.CachePrefix)
	assert.Equal(t, 5*time.Minute, env.CacheTTL)
	assert.Empty(t, env.RedisAddr)
	assert.Empty(t, env.NATSURL)
	assert.Equal(t, 12, env.DefaultPageSize)
	assert.NotEmpty(t, env.CORSAllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ADDR", ":9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://shop.example , ,https://admin.example")
	t.Setenv("DEFAULT_PAGE_SIZE", "24")

	env := LoadEnv()
	assert.Equal(t, ":9000", env.AppAddr)
	assert.Equal(t, "redis:6379", env.RedisAddr)
	assert.Equal(t, 90*time.Second, env.CacheTTL)
	assert.Equal(t, "nats://nats:4222", env.NATSURL)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, env.CORSAllowedOrigins)
	assert.Equal(t, 24, env.DefaultPageSize)
}

func TestLoadEnvInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("DEFAULT_PAGE_SIZE", "-3")

	env := LoadEnv()
	assert.Equal(t, 5*time.Minute, env.CacheTTL)
	assert.Equal(t, 12, env.DefaultPageSize)
}
