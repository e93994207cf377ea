package cachestore

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-catalog-sync/pkg/catalog"
)

// CatalogCache is the typed persistence layer for the catalog blob and its
// metadata. Storage failures (quota, corruption, connectivity) are absorbed
// here: reads degrade to a miss, writes are logged and dropped. Callers
// never see a StorageError.
type CatalogCache struct {
	store  Store
	logger zerolog.Logger
}

// NewCatalogCache wraps a Store with the catalog's typed accessors.
func NewCatalogCache(store Store, logger zerolog.Logger) *CatalogCache {
	return &CatalogCache{
		store:  store,
		logger: logger.With().Str("component", "CatalogCache").Logger(),
	}
}

// Catalog returns the cached catalog, or ok=false on a miss, a storage
// failure, or an undecodable blob.
func (c *CatalogCache) Catalog(ctx context.Context) (catalog.Catalog, bool) {
	data, err := c.store.Get(ctx, keyCatalogBlob)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			c.logger.Warn().Err(err).Msg("Cache read failed, treating as miss.")
		}
		return nil, false
	}
	var games catalog.Catalog
	if err := json.Unmarshal(data, &games); err != nil {
		c.logger.Warn().Err(err).Msg("Cached catalog is corrupt, treating as miss.")
		return nil, false
	}
	return games, true
}

// Metadata returns the persisted cache metadata, or ok=false on a miss or
// any storage failure.
func (c *CatalogCache) Metadata(ctx context.Context) (*catalog.CacheMetadata, bool) {
	data, err := c.store.Get(ctx, keyCatalogMetadata)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			c.logger.Warn().Err(err).Msg("Metadata read failed, treating as miss.")
		}
		return nil, false
	}
	var meta catalog.CacheMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		c.logger.Warn().Err(err).Msg("Cached metadata is corrupt, treating as miss.")
		return nil, false
	}
	return &meta, true
}

// Save overwrites the cached catalog and its metadata. Failures are logged
// and absorbed; the next read simply misses.
func (c *CatalogCache) Save(ctx context.Context, games catalog.Catalog, meta *catalog.CacheMetadata) {
	blob, err := json.Marshal(games)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to marshal catalog for caching.")
		return
	}
	if err := c.store.Set(ctx, keyCatalogBlob, blob); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist catalog blob.")
		return
	}
	metaBlob, err := json.Marshal(meta)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to marshal cache metadata.")
		return
	}
	if err := c.store.Set(ctx, keyCatalogMetadata, metaBlob); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist cache metadata.")
	}
}

// Clear removes the catalog blob and every associated metadata key. From the
// caller's perspective this is all-or-nothing; individual removal failures
// are logged and absorbed, and the next read treats the cache as empty.
func (c *CatalogCache) Clear(ctx context.Context) {
	for _, key := range catalogKeys {
		if err := c.store.Remove(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove cache key.")
		}
	}
}
