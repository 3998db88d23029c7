package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"jobfuse/internal/adapters"
	"jobfuse/internal/aggregator"
	"jobfuse/internal/cache"
	cacheredis "jobfuse/internal/cache/redis"
	"jobfuse/internal/config"
	"jobfuse/internal/events"
	"jobfuse/internal/housekeeping"
	"jobfuse/internal/store"
	"jobfuse/internal/telemetry"
)

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newPool(lc fx.Lifecycle, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := store.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func newJobStore(pool *pgxpool.Pool, logger *zap.Logger) *store.JobStore {
	return store.NewJobStore(pool, logger)
}

func newCache(lc fx.Lifecycle, cfg *config.Config) cache.Cache {
	c := cacheredis.New(cache.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		DefaultTTL:    cfg.CacheTTL,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	return c
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	publisher, err := events.NewPublisher(cfg.NATSURL, cfg.NATSConnTimeout, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher, nil
}

// newAdapters builds the source adapters in declaration order. Disabled or
// unconfigured sources stay in the list so every attempted source shows up
// in aggregator results.
func newAdapters(cfg *config.Config, logger *zap.Logger) []adapters.SourceAdapter {
	return []adapters.SourceAdapter{
		adapters.NewAdzunaAdapter(cfg.Adzuna, cfg.AdapterTimeout, logger),
		adapters.NewJoobleAdapter(cfg.Jooble, cfg.AdapterTimeout, logger),
	}
}

func newAggregator(
	sourceAdapters []adapters.SourceAdapter,
	jobStore *store.JobStore,
	responseCache cache.Cache,
	publisher events.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *aggregator.Aggregator {
	return aggregator.New(sourceAdapters, jobStore, responseCache, publisher, logger, aggregator.Options{
		CacheTTL:       cfg.CacheTTL,
		AdapterTimeout: cfg.AdapterTimeout,
	})
}

func newJanitor(jobStore *store.JobStore, cfg *config.Config, logger *zap.Logger) *housekeeping.Janitor {
	return housekeeping.New(jobStore, logger, cfg.HousekeepingInterval, cfg.RetentionWindow)
}

func registerLifecycle(
	lc fx.Lifecycle,
	pool *pgxpool.Pool,
	janitor *housekeeping.Janitor,
	cfg *config.Config,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			migrator := store.NewMigrator(pool, logger)
			if err := migrator.EnsureSchema(ctx); err != nil {
				return err
			}
			return janitor.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			janitor.Stop()
			return nil
		},
	})

	if cfg.OTLPCollectorURL != "" {
		var shutdownTracer func()
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				shutdown, err := telemetry.InitTracer(ctx, "jobfuse", cfg.OTLPCollectorURL)
				if err != nil {
					logger.Warn("tracer init failed, continuing without export", zap.Error(err))
					return nil
				}
				shutdownTracer = shutdown
				return nil
			},
			OnStop: func(context.Context) error {
				if shutdownTracer != nil {
					shutdownTracer()
				}
				return nil
			},
		})
	}
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newPool,
			newJobStore,
			newCache,
			newPublisher,
			newAdapters,
			newAggregator,
			newJanitor,
		),
		fx.Invoke(registerLifecycle),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
