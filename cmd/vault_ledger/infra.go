package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/platform/events"
	"github.com/SscSPs/vault_ledger/internal/platform/locking"
	"github.com/SscSPs/vault_ledger/internal/platform/ttlstore"
	"github.com/SscSPs/vault_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/vault_ledger/internal/repositories/memory"
	"github.com/SscSPs/vault_ledger/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
)

const redisKeyPrefix = "vault_ledger:"

// infra holds the backends selected by configuration.
type infra struct {
	repos      portsrepo.RepositoryProvider
	locker     ports.Locker
	stateStore ttlstore.Store
	publisher  ports.EventPublisher
	limiter    *limiter.Limiter

	closers []func()
}

// Close releases backends in reverse order of creation.
func (i *infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func buildInfra(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *infra, err error) {
	in := &infra{}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		in.closers = append(in.closers, func() { _ = rdb.Close() })
		logger.Info("Redis connection established.")
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		in.closers = append(in.closers, func() { database.ClosePgxPool(dbPool) })
		logger.Info("Database connection pool established.")

		status, err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Database schema ready", slog.Uint64("version", uint64(status.Version)), slog.Bool("applied", status.Applied))
		in.repos = pgsql.NewRepositoryProvider(dbPool)
	default:
		logger.Warn("Using in-memory storage; data is lost on restart")
		in.repos = memory.NewRepositoryProvider(memory.NewStore())
	}

	switch cfg.LockBackend {
	case config.BackendRedis:
		in.locker = locking.NewRedisLocker(rdb, redisKeyPrefix+"lock:", cfg.LockTTL, cfg.LockWait, logger)
	default:
		in.locker = locking.NewKeyedMutex(cfg.LockWait)
	}

	switch cfg.StateStore {
	case config.BackendRedis:
		in.stateStore = ttlstore.NewRedisStore(rdb, redisKeyPrefix+"idem:")
	default:
		mem := ttlstore.NewMemoryStore()
		janitorCtx, cancel := context.WithCancel(context.Background())
		mem.StartJanitor(janitorCtx, time.Minute)
		in.closers = append(in.closers, cancel)
		in.stateStore = mem
	}

	switch cfg.EventSink {
	case config.SinkPubSub:
		pub, err := events.NewPubSubPublisher(ctx, events.PubSubConfig{
			ProjectID:       cfg.PubSubProjectID,
			Topic:           cfg.PubSubTopic,
			CredentialsJSON: cfg.PubSubCredentialsJSON,
		}, logger)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() {
			if cerr := pub.Close(); cerr != nil {
				logger.Error("Error closing pubsub publisher", slog.String("error", cerr.Error()))
			}
		})
		in.publisher = pub
	case config.SinkNone:
		in.publisher = events.NoopPublisher{}
	default:
		in.publisher = events.NewLogPublisher(logger)
	}

	if cfg.RateLimit != "" {
		l, err := middleware.NewLimiter(cfg.RateLimit, rdb)
		if err != nil {
			return nil, err
		}
		in.limiter = l
	}
	return in, nil
}
