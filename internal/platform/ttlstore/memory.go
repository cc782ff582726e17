package ttlstore

import (
	"context"
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e cacheEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// TTLCache stores values in-memory with per-entry TTLs.
type TTLCache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]cacheEntry[V]
	now   func() time.Time
}

func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{items: make(map[K]cacheEntry[V]), now: time.Now}
}

// Get returns a cached value if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if entry.expired(c.now()) {
		delete(c.items, key)
		return zero, false
	}
	return entry.value, true
}

// Set stores a value; a non-positive ttl never expires.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = c.entry(value, ttl)
	c.mu.Unlock()
}

// SetIfAbsent stores value unless a live entry already exists.
func (c *TTLCache[K, V]) SetIfAbsent(key K, value V, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.items[key]; ok && !entry.expired(c.now()) {
		return false
	}
	c.items[key] = c.entry(value, ttl)
	return true
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Purge drops every expired entry and returns how many were removed.
func (c *TTLCache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

func (c *TTLCache[K, V]) entry(value V, ttl time.Duration) cacheEntry[V] {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	return cacheEntry[V]{value: value, expiresAt: expiresAt}
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	cache *TTLCache[string, []byte]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: NewTTLCache[string, []byte]()}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	return v, ok, nil
}

func (s *MemoryStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.cache.SetIfAbsent(key, value, ttl), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// StartJanitor purges expired entries every interval until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cache.Purge()
			}
		}
	}()
}
