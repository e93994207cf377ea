//go:build integration

package cachestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-catalog-sync/pkg/cachestore"
)

// Requires the Firestore emulator; set FIRESTORE_EMULATOR_HOST.
func TestFirestoreStore_Integration(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := firestore.NewClient(ctx, "catalogsync-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := cachestore.NewFirestoreStore(&cachestore.FirestoreConfig{
		ProjectID:      "catalogsync-test",
		CollectionName: "catalog-cache",
	}, client, zerolog.Nop())
	require.NoError(t, err)

	key := "test:" + t.Name()

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
