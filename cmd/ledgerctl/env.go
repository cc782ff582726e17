package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/core/services"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/platform/events"
	"github.com/SscSPs/vault_ledger/internal/platform/locking"
	"github.com/SscSPs/vault_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/vault_ledger/pkg/database"
	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"
)

// env is the database-backed service set a command runs against.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *portssvc.ServiceContainer
	close  func()
}

func newCLILogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, fmt.Errorf("ledgerctl needs STORAGE_DRIVER=%s, got %q", config.StoragePostgres, cfg.StorageDriver)
	}
	return cfg, nil
}

// openEnv connects to Postgres and, when LOCK_BACKEND=redis, to the lock
// store shared with running servers.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newCLILogger()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return nil, err
	}
	closers := []func(){func() { database.ClosePgxPool(pool) }}

	opts := []services.ContainerOption{services.WithEventPublisher(events.NewLogPublisher(logger))}
	if cfg.LockBackend == config.BackendRedis {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			database.ClosePgxPool(pool)
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		closers = append(closers, func() { _ = rdb.Close() })
		opts = append(opts, services.WithLocker(locking.NewRedisLocker(rdb, "vault_ledger:lock:", cfg.LockTTL, cfg.LockWait, logger)))
	}

	svc, err := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool), opts...)
	if err != nil {
		database.ClosePgxPool(pool)
		return nil, err
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		svc:    svc,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

// withEnv runs fn against an opened env and maps its error to an exit status.
func withEnv(ctx context.Context, fn func(*env) error) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.close()
	if err := fn(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
