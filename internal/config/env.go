package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"repairshop/internal/utils"

	"go.uber.org/zap"
)

type Env struct {
	AppAddr     string
	GinMode     string
	LogLevel    string
	DatabaseDSN string

	RedisAddr   string // empty = in-process cache
	CachePrefix string
	CacheTTL    time.Duration

	NATSURL string // empty = no catalog events

	JWTSecret          string
	CORSAllowedOrigins []string
	DefaultPageSize    int

	// seeds the first back-office account when both are set
	AdminEmail    string
	AdminPassword string
}

func LoadEnv() Env {
	return Env{
		AppAddr:     envOrDefault("APP_ADDR", ":8080"),
		GinMode:     strings.TrimSpace(os.Getenv("GIN_MODE")),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		DatabaseDSN: envOrDefault("DB_DSN", "root:@tcp(127.0.0.1:3306)/repair_shop"),

		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		CachePrefix: envOrDefault("CACHE_PREFIX", "catalog:"),
		CacheTTL:    envDuration("CACHE_TTL", 5*time.Minute),

		NATSURL: strings.TrimSpace(os.Getenv("NATS_URL")),

		JWTSecret:          envOrDefault("JWT_SECRET", "change-me-in-production"),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"}),
		DefaultPageSize:    envInt("DEFAULT_PAGE_SIZE", 12),

		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		utils.Logger().Warn("invalid int env, using default",
			zap.String("key", key), zap.String("value", raw), zap.Int("default", fallback))
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		utils.Logger().Warn("invalid duration env, using default",
			zap.String("key", key), zap.String("value", raw), zap.Duration("default", fallback))
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	out := []string{}
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
