package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repairshop/internal/cache"
	intconfig "repairshop/internal/config"
	router "repairshop/internal/http"
	"repairshop/internal/events"
	"repairshop/internal/repositories"
	"repairshop/internal/services"
	"repairshop/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	log, err := utils.InitLogger(env.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := intconfig.ConnectDB(env.DatabaseDSN)
	defer intconfig.CloseDB()

	catalogRepo := repositories.CatalogRepository{DB: db}
	adminRepo := repositories.AdminUserRepository{DB: db}
	if err := catalogRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure catalog schema", zap.Error(err))
	}
	if err := adminRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure admin schema", zap.Error(err))
	}
	bootstrapAdmin(ctx, env, adminRepo)

	catalogCache := newCache(ctx, env)
	if c, ok := catalogCache.(io.Closer); ok {
		defer c.Close()
	}
	catalog := services.NewCatalogService(catalogRepo, catalogCache)

	var publisher events.Publisher = &events.NoopPublisher{}
	if env.NATSURL != "" {
		pub, err := events.NewNATSPublisher(env.NATSURL)
		if err != nil {
			log.Warn("catalog events disabled", zap.Error(err))
		} else {
			publisher = pub
			listenForChanges(ctx, env, catalog)
		}
	}
	defer publisher.Close()

	r := router.NewRouter(env, router.Deps{
		Catalog:   catalog,
		Inventory: services.InventoryService{Store: catalogRepo, Catalog: catalog, Events: publisher},
		Admins:    adminRepo,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		return
	}
	log.Info("server stopped")
}

// newCache prefers Redis when configured and reachable, otherwise memory.
func newCache(ctx context.Context, env intconfig.Env) cache.Cache {
	log := utils.Logger()
	if env.RedisAddr == "" {
		log.Info("using in-process catalog cache", zap.Duration("ttl", env.CacheTTL))
		return cache.NewMemory(env.CacheTTL)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rc, err := cache.DialRedis(dialCtx, cache.Config{RedisAddr: env.RedisAddr, Prefix: env.CachePrefix, TTL: env.CacheTTL})
	if err != nil {
		log.Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
		return cache.NewMemory(env.CacheTTL)
	}
	log.Info("using redis catalog cache", zap.String("addr", env.RedisAddr), zap.String("prefix", env.CachePrefix))
	return rc
}

// listenForChanges drops this instance's cache when any instance writes to the catalog.
func listenForChanges(ctx context.Context, env intconfig.Env, catalog services.CatalogService) {
	log := utils.Logger()
	sub, err := events.NewNATSSubscriber(env.NATSURL)
	if err != nil {
		log.Warn("catalog change listener disabled", zap.Error(err))
		return
	}
	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	err = events.Listen(ctx, sub, events.TopicAll, func(ctx context.Context, _ []byte) {
		catalog.Invalidate(ctx, "catalog event")
	})
	if err != nil {
		log.Warn("catalog change listener disabled", zap.Error(err))
	}
}

func bootstrapAdmin(ctx context.Context, env intconfig.Env, repo repositories.AdminUserRepository) {
	if env.AdminEmail == "" || env.AdminPassword == "" {
		return
	}
	log := utils.Logger()
	hash, err := bcrypt.GenerateFromPassword([]byte(env.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash admin password", zap.Error(err))
	}
	if err := repo.EnsureAdmin(ctx, "Owner", env.AdminEmail, string(hash)); err != nil {
		log.Fatal("bootstrap admin", zap.Error(err))
	}
	log.Info("admin account ready", zap.String("email", env.AdminEmail))
}
