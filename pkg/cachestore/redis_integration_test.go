//go:build integration

package cachestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-catalog-sync/pkg/cachestore"
)

// Requires a reachable Redis; set REDIS_ADDR (defaults to localhost:6379).
func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := cachestore.NewRedisStore(ctx, &cachestore.RedisConfig{
		Addr: addr,
		TTL:  time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err, "redis must be reachable at %s", addr)
	t.Cleanup(func() { _ = store.Close() })

	key := "catalogsync:test:" + t.Name()
	t.Cleanup(func() { _ = store.Remove(ctx, key) })

	t.Run("Missing key maps to ErrKeyNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, key)
		require.ErrorIs(t, err, cachestore.ErrKeyNotFound)
	})

	t.Run("Set then Get round-trips", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte("payload")))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got)
	})

	t.Run("Remove deletes the key", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, key))

		_, err := store.Get(ctx, key)
		require.ErrorIs(t, err, cachestore.ErrKeyNotFound)
	})
}
