package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/ekonum/internal/forecast"
	"github.com/odyssey-erp/ekonum/internal/platform/cache"
	"github.com/odyssey-erp/ekonum/internal/platform/db"
	"github.com/odyssey-erp/ekonum/internal/records"
	"github.com/odyssey-erp/ekonum/internal/records/postgres"
	"github.com/odyssey-erp/ekonum/internal/records/sqlite"
)

// Store is a record store able to serve reads and full imports.
type Store interface {
	records.Repository
	records.Importer
}

// OpenStore connects the record store selected by cfg.StoreDriver. The
// returned func releases its connections.
func OpenStore(ctx context.Context, cfg *Config) (Store, func(), error) {
	switch cfg.StoreDriver {
	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, nil, err
		}
		return postgres.New(pool), pool.Close, nil
	case StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("app: unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// ConnectRedis dials Redis. Failure is logged and yields a nil client so the
// forecast engine keeps serving uncached results.
func ConnectRedis(ctx context.Context, cfg *Config, logger *slog.Logger) *redis.Client {
	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, forecast cache disabled", slog.Any("error", err))
		return nil
	}
	return client
}

// QueueRedisOpt converts the configured Redis address for asynq.
func QueueRedisOpt(cfg *Config) (asynq.RedisClientOpt, error) {
	opts, err := cache.Options(cfg.RedisAddr)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}, nil
}

// NewForecastService assembles the forecast engine over store with an
// optional Redis cache.
func NewForecastService(store records.Repository, client *redis.Client, cfg *Config, logger *slog.Logger, recorder forecast.Recorder) *forecast.Service {
	svc := forecast.NewService(store, forecast.NewCache(client, cfg.CacheTTL), logger)
	if recorder != nil {
		svc = svc.WithRecorder(recorder)
	}
	return svc
}
