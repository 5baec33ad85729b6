package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.Store = (*MemoryStore)(nil)
	_ ports.Store = (*RedisStore)(nil)
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	revoked, err := store.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "session-1", time.Hour))
	revoked, err = store.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, revoked)

	t.Run("shorter revocation does not shorten", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "session-1", time.Minute))
		now = now.Add(10 * time.Minute)

		revoked, err := store.IsRevoked(ctx, "session-1")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("record lapses with the session", func(t *testing.T) {
		now = now.Add(time.Hour)

		revoked, err := store.IsRevoked(ctx, "session-1")
		require.NoError(t, err)
		require.False(t, revoked)

		store.Cleanup()
		require.Empty(t, store.revoked)
	})
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)

	revoked, err := store.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "session-1", time.Hour))
	require.Equal(t, time.Hour, mr.TTL("siwe:revoked:session-1"))

	revoked, err = store.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, revoked)

	mr.FastForward(time.Hour)
	revoked, err = store.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, revoked)

	t.Run("non-positive ttl is a no-op", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "session-2", 0))
		require.False(t, mr.Exists("siwe:revoked:session-2"))
	})

	t.Run("store unavailable", func(t *testing.T) {
		mr.Close()

		_, err := store.IsRevoked(ctx, "session-1")
		require.ErrorIs(t, err, core.ErrStoreOperationFailed)
		require.ErrorIs(t, store.Revoke(ctx, "session-1", time.Hour), core.ErrStoreOperationFailed)
	})
}
