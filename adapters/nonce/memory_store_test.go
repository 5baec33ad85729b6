package nonce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/ports"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	const sc = core.SessionContext("ctx-1")

	t.Run("single use", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)

		value, err := store.Issue(ctx, sc)
		require.NoError(t, err)
		require.Len(t, value, 2*valueBytes)
		require.Regexp(t, `^[0-9a-f]+$`, value)

		ok, err := store.Consume(ctx, sc, value)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Consume(ctx, sc, value)
		require.NoError(t, err)
		require.False(t, ok, "nonce must not be accepted twice")

		store.Cleanup()
		require.Zero(t, store.Len())
	})

	t.Run("mismatch burns the nonce", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)

		value, err := store.Issue(ctx, sc)
		require.NoError(t, err)

		ok, err := store.Consume(ctx, sc, "deadbeefdeadbeef")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = store.Consume(ctx, sc, value)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("bound to its context", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)

		value, err := store.Issue(ctx, sc)
		require.NoError(t, err)

		ok, err := store.Consume(ctx, "ctx-2", value)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = store.Consume(ctx, sc, value)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("reissue replaces", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)

		first, err := store.Issue(ctx, sc)
		require.NoError(t, err)
		second, err := store.Issue(ctx, sc)
		require.NoError(t, err)
		require.NotEqual(t, first, second)
		require.Equal(t, 1, store.Len())

		ok, err := store.Consume(ctx, sc, first)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("expired", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)
		now := time.Now()
		store.now = func() time.Time { return now }

		value, err := store.Issue(ctx, sc)
		require.NoError(t, err)

		now = now.Add(time.Minute)
		ok, err := store.Consume(ctx, sc, value)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("empty context", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)

		_, err := store.Issue(ctx, "")
		require.ErrorIs(t, err, ErrEmptyContext)

		ok, err := store.Consume(ctx, "", "anything")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("cleanup", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)
		now := time.Now()
		store.now = func() time.Time { return now }

		_, err := store.Issue(ctx, "a")
		require.NoError(t, err)
		now = now.Add(30 * time.Second)
		_, err = store.Issue(ctx, "b")
		require.NoError(t, err)

		now = now.Add(45 * time.Second)
		store.Cleanup()
		require.Equal(t, 1, store.Len())
	})
}

func TestMemoryStoreConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	value, err := store.Issue(ctx, "ctx")
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Consume(ctx, "ctx", value)
			if err == nil && ok {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), accepted.Load())
}

var (
	_ ports.NonceStore = (*MemoryStore)(nil)
	_ ports.NonceStore = (*RedisStore)(nil)
)
