package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/linkgate/pkg/cache"
	"mercator-hq/linkgate/pkg/config"
	"mercator-hq/linkgate/pkg/limits/ratelimit"
	"mercator-hq/linkgate/pkg/server"
	"mercator-hq/linkgate/pkg/shortener"
	"mercator-hq/linkgate/pkg/shortener/retention"
	"mercator-hq/linkgate/pkg/shortener/storage"
	"mercator-hq/linkgate/pkg/telemetry/health"
	"mercator-hq/linkgate/pkg/telemetry/metrics"
)

// app holds every long-lived component built from a Config.
type app struct {
	store     storage.Store
	urls      *cache.LRU[shortener.Link]
	service   *shortener.Service
	registry  *ratelimit.Registry
	collector *metrics.Collector
	checker   *health.Checker
	scheduler *retention.Scheduler
	server    *server.Server
}

// buildApp wires the components described by cfg. The returned app owns
// the store; call Close when done.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	store, err := storage.Open(ctx, storeConfig(&cfg.Store))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	a.store = store

	a.urls, err = shortener.NewCache(cfg.Cache.Capacity, cache.WithEvictCallback[shortener.Link](func(string, shortener.Link) {
		a.collector.RecordCacheEviction()
	}))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	a.service = shortener.NewService(store, a.urls, shortener.Config{
		CodeLength:  cfg.Shortener.CodeLength,
		MaxAttempts: cfg.Shortener.MaxAttempts,
		Retention:   time.Duration(cfg.Store.Retention.Days) * 24 * time.Hour,
	},
		shortener.WithMetrics(a.collector),
		shortener.WithLogger(logger.With("component", "shortener")),
	)

	if cfg.RateLimit.Enabled {
		a.registry, err = ratelimit.NewRegistry(ratelimit.RegistryConfig{
			RateLimit:          cfg.RateLimit.RateLimit,
			WindowSeconds:      cfg.RateLimit.WindowSeconds,
			IgnoreForwardedFor: !cfg.RateLimit.TrustForwardedFor,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		registry := a.registry
		a.collector.RegisterClientGauge(func() float64 { return float64(registry.Len()) })
	}

	a.checker = health.New(0)
	a.checker.RegisterCheck("store", a.service.Ping)

	if cfg.Store.Retention.Days > 0 {
		a.scheduler = retention.NewScheduler(a.service, retention.Config{
			Schedule:      cfg.Store.Retention.PruneSchedule,
			RetentionDays: cfg.Store.Retention.Days,
		})
	}

	a.server, err = server.NewServer(cfg, server.Dependencies{
		Shortener: a.service,
		Registry:  a.registry,
		Metrics:   a.collector,
		Health:    a.checker,
		Version:   server.VersionInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return a, nil
}

// Close stops the scheduler and closes the store.
func (a *app) Close() error {
	var errs []error
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// storeConfig converts the store section of the configuration file.
func storeConfig(cfg *config.StoreConfig) storage.Config {
	return storage.Config{
		Backend: cfg.Backend,
		SQLite: &storage.SQLiteConfig{
			Path:        cfg.SQLite.Path,
			Driver:      cfg.SQLite.Driver,
			WALMode:     cfg.SQLite.WALMode,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		},
		Redis: storage.RedisConfig{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
			Breaker: storage.BreakerConfig{
				ConsecutiveFailures: cfg.Redis.BreakerFailures,
				OpenTimeout:         cfg.Redis.BreakerOpenTimeout,
			},
		},
	}
}
