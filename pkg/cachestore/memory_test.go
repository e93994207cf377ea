package cachestore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-catalog-sync/pkg/cachestore"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := cachestore.NewMemoryStore()

	t.Run("Get on a missing key returns ErrKeyNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		require.ErrorIs(t, err, cachestore.ErrKeyNotFound)
	})

	t.Run("Set then Get round-trips", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("value")))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)
	})

	t.Run("Get returns a copy, not the stored slice", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "copy", []byte("abc")))

		got, err := store.Get(ctx, "copy")
		require.NoError(t, err)
		got[0] = 'X'

		again, err := store.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("Remove deletes the key and is idempotent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "gone", []byte("v")))
		require.NoError(t, store.Remove(ctx, "gone"))
		require.NoError(t, store.Remove(ctx, "gone"))

		_, err := store.Get(ctx, "gone")
		require.ErrorIs(t, err, cachestore.ErrKeyNotFound)
	})
}
