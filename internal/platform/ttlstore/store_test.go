package ttlstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store, expire func(time.Duration)) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	set, err := s.SetNX(ctx, "k", []byte("pending"), time.Minute)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = s.SetNX(ctx, "k", []byte("other"), time.Minute)
	require.NoError(t, err)
	assert.False(t, set, "second SetNX must not overwrite")

	require.NoError(t, s.Set(ctx, "k", []byte("done"), time.Minute))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "done", string(v))

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.SetNX(ctx, "short", []byte("x"), time.Second)
	require.NoError(t, err)
	expire(2 * time.Second)
	_, ok, err = s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire")

	set, err = s.SetNX(ctx, "short", []byte("y"), time.Second)
	require.NoError(t, err)
	assert.True(t, set, "expired key can be claimed again")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.cache.now = func() time.Time { return now }
	exerciseStore(t, s, func(d time.Duration) { now = now.Add(d) })
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	exerciseStore(t, NewRedisStore(rdb, "vault_ledger:idem:"), mr.FastForward)
	assert.False(t, mr.Exists("k"))
}

func TestTTLCache_Purge(t *testing.T) {
	c := NewTTLCache[string, int]()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Second)
	c.Set("b", 2, 0)
	now = now.Add(time.Minute)

	assert.Equal(t, 1, c.Purge())
	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
