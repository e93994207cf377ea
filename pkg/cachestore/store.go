// Package cachestore provides string-keyed byte persistence for the catalog
// pipeline, plus the typed helper that owns the catalog's cache keys. The
// generic Store interface has in-memory, BadgerDB, Redis and Firestore
// implementations; the pipeline itself only ever talks to CatalogCache,
// which absorbs storage failures as cache misses.
package cachestore

import (
	"context"
	"errors"
	"io"
)

// ErrKeyNotFound is returned by Store.Get when the key has no value. Any
// other error indicates a genuine storage problem.
var ErrKeyNotFound = errors.New("cachestore: key not found")

// Store is a generic interface for string-keyed byte persistence.
type Store interface {
	// Get retrieves the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Closer is included for implementations that manage connections or
	// file handles.
	io.Closer
}
