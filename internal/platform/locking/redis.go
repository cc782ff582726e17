package locking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/ports"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker is a Locker shared by every instance pointing at the same Redis.
type RedisLocker struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger *slog.Logger
}

var _ ports.Locker = (*RedisLocker)(nil)

// NewRedisLocker builds a RedisLocker. ttl bounds how long a crashed holder
// keeps a key; wait bounds how long Lock retries before giving up.
func NewRedisLocker(rdb redis.UniversalClient, prefix string, ttl, wait time.Duration, logger *slog.Logger) *RedisLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		prefix: prefix,
		ttl:    ttl,
		wait:   wait,
		retry:  25 * time.Millisecond,
		logger: logger,
	}
}

func (r *RedisLocker) Lock(ctx context.Context, keys ...string) (ports.Unlock, error) {
	if r.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}

	keys = normalizeKeys(keys)
	held := make([]*redislock.Lock, 0, len(keys))
	for _, key := range keys {
		lock, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(r.retry),
		})
		if err != nil {
			r.releaseAll(held)
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, apperrors.Wrap("Lock", apperrors.ErrConcurrencyConflict, err, fmt.Sprintf("could not lock %s", key)).
					With("key", key)
			}
			return nil, fmt.Errorf("failed to obtain redis lock %s: %w", key, err)
		}
		held = append(held, lock)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		r.releaseAll(held)
	}, nil
}

func (r *RedisLocker) releaseAll(held []*redislock.Lock) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(held) - 1; i >= 0; i-- {
		if err := held[i].Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.logger.Warn("Failed to release redis lock", slog.String("key", held[i].Key()), slog.String("error", err.Error()))
		}
	}
}
