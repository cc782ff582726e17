package locking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/ports"
)

// KeyedMutex is an in-process Locker: one mutex per key, created on demand
// and dropped when no caller holds or waits for it.
type KeyedMutex struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

var _ ports.Locker = (*KeyedMutex)(nil)

// NewKeyedMutex returns a KeyedMutex. A positive wait bounds how long Lock
// blocks before giving up with a concurrency conflict.
func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{wait: wait, locks: make(map[string]*keyLock)}
}

func (k *KeyedMutex) Lock(ctx context.Context, keys ...string) (ports.Unlock, error) {
	if k.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.wait)
		defer cancel()
	}

	keys = normalizeKeys(keys)
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := k.acquire(ctx, key); err != nil {
			k.releaseAll(held)
			return nil, apperrors.Wrap("Lock", apperrors.ErrConcurrencyConflict, err, fmt.Sprintf("could not lock %s", key)).
				With("key", key)
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() { once.Do(func() { k.releaseAll(held) }) }, nil
}

func (k *KeyedMutex) acquire(ctx context.Context, key string) error {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.drop(key, l)
		return ctx.Err()
	}
}

func (k *KeyedMutex) releaseAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		k.mu.Lock()
		l := k.locks[keys[i]]
		k.mu.Unlock()
		<-l.ch
		k.drop(keys[i], l)
	}
}

func (k *KeyedMutex) drop(key string, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}
