// Package main is the entry point for the llmux gateway.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/hemanth/llmux/internal/alias"
	"github.com/hemanth/llmux/internal/cache"
	"github.com/hemanth/llmux/internal/config"
	"github.com/hemanth/llmux/internal/logging"
	"github.com/hemanth/llmux/internal/metrics"
	"github.com/hemanth/llmux/internal/provider"
	"github.com/hemanth/llmux/internal/registry"
	"github.com/hemanth/llmux/internal/router"
	"github.com/hemanth/llmux/internal/server"
	"github.com/hemanth/llmux/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	reg := registry.New(cfg.Providers, providerOrder(cfg.Providers))
	if len(reg.List()) == 0 {
		logger.Warn("no providers enabled; every request will fail with no_providers_available")
	}

	aliases := alias.Table(cfg.Routing.ModelAliases)

	cacheBackend, err := buildCacheBackend(cfg.Cache)
	if err != nil {
		logger.Fatal("failed to build cache backend", zap.Error(err))
	}
	cacheTTL := cfg.Cache.Memory.TTL
	if cfg.Cache.Backend == "redis" {
		cacheTTL = cfg.Cache.Redis.TTL
	}

	promReg := prometheus.NewRegistry()
	mets := metrics.New(promReg)

	respCache := cache.New(cacheBackend, cacheTTL, cfg.Cache.Enabled, mets, logger.Named("cache"))

	respStore := store.New(store.DefaultSize, store.DefaultTTL)

	client := provider.NewClient(&http.Client{}, logger.Named("provider"))

	rt := router.New(router.Config{
		Registry:        reg,
		Aliases:         aliases,
		Client:          client,
		DefaultStrategy: router.Strategy(cfg.Routing.DefaultStrategy),
		FallbackChain:   cfg.Routing.FallbackChain,
		Metrics:         mets,
		Logger:          logger.Named("router"),
	})

	srv := server.New(server.Deps{
		Config:     cfg,
		Registry:   reg,
		Router:     rt,
		Cache:      respCache,
		Store:      respStore,
		Logger:     logger.Named("server"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("llmux listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	waitForShutdown(httpServer, logger)
}

func configPath() string {
	if p := os.Getenv("LLMUX_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// providerOrder sorts provider names alphabetically so Registry.List has a
// deterministic order; koanf's map unmarshaling does not preserve the
// original YAML key order.
func providerOrder(providers map[string]config.ProviderConfig) []string {
	order := make([]string, 0, len(providers))
	for name := range providers {
		order = append(order, name)
	}
	sort.Strings(order)
	return order
}

func buildCacheBackend(cfg config.CacheConfig) (cache.Backend, error) {
	switch cfg.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return cache.NewRedisBackend(redis.NewClient(opts), cfg.Redis.KeyPrefix), nil
	case "memory", "":
		return cache.NewMemoryBackend(cfg.Memory.MaxItems, cfg.Memory.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func waitForShutdown(httpServer *http.Server, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
