// Package syncer composes the fetcher, validator and cache store into the
// catalog synchronization policy: remote first, then the persisted cache,
// then the bundled catalog, with a uniform tagged result whichever tier
// wins. Expected failures (network, validation, storage) never surface as
// errors from FetchCatalog; only exhausting every tier does.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/illmade-knight/go-catalog-sync/pkg/cachestore"
	"github.com/illmade-knight/go-catalog-sync/pkg/catalog"
	"github.com/illmade-knight/go-catalog-sync/pkg/fetcher"
	"github.com/illmade-knight/go-catalog-sync/pkg/validation"
)

// Fetcher is the orchestrator's view of the HTTP layer.
type Fetcher interface {
	Fetch(ctx context.Context, url, etag, lastModified string) (*fetcher.Response, error)
}

// Config holds the synchronization policy for one catalog endpoint.
type Config struct {
	// URL is the remote catalog endpoint. Empty means no remote source is
	// configured and the bundled catalog is returned directly.
	URL string
	// FallbackToBundled enables the bundled tier when remote and cache both
	// fail. When disabled, exhaustion returns an error instead.
	FallbackToBundled bool
	// ValidateSchema runs every payload (remote and bundled alike) through
	// the validator. When disabled payloads are only required to decode.
	ValidateSchema bool
	// EnforceHTTPS rejects non-https endpoints before any network call.
	EnforceHTTPS bool
}

// NewConfig returns the default policy: validation on, https enforced,
// bundled fallback enabled.
func NewConfig(url string) *Config {
	return &Config{
		URL:               url,
		FallbackToBundled: true,
		ValidateSchema:    true,
		EnforceHTTPS:      true,
	}
}

// Dependencies carries the orchestrator's collaborators.
type Dependencies struct {
	Fetcher Fetcher
	Cache   *cachestore.CatalogCache
	// Bundled supplies the statically shipped catalog. Optional; without it
	// the bundled tier is simply absent.
	Bundled BundledSource
	// Now overrides the clock for tests. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs the fetch/validate/fallback pipeline. Concurrent calls
// for the same endpoint share one in-flight pass via singleflight, so a
// user-triggered refresh overlapping the launch fetch performs one network
// round trip and both callers see the same result.
type Orchestrator struct {
	cfg       Config
	fetcher   Fetcher
	cache     *cachestore.CatalogCache
	bundled   BundledSource
	validator *validation.Validator
	now       func() time.Time
	group     singleflight.Group
	logger    zerolog.Logger
}

// New creates an Orchestrator. Fetcher and Cache are required; Bundled is
// only required if the configuration can ever reach the bundled tier.
func New(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		cfg:       *cfg,
		fetcher:   deps.Fetcher,
		cache:     deps.Cache,
		bundled:   deps.Bundled,
		validator: validation.New(),
		now:       now,
		logger:    logger.With().Str("component", "SyncOrchestrator").Logger(),
	}, nil
}

// FetchCatalog resolves the catalog through the tier chain and returns a
// tagged result. It returns an error only for configuration mistakes with no
// remaining tier, or when every tier is exhausted; the error then wraps the
// most recent underlying cause.
func (o *Orchestrator) FetchCatalog(ctx context.Context) (*catalog.FetchResult, error) {
	// No URL configured: the bundled catalog is the canonical source. Not an
	// error, and neither network nor cache is touched.
	if o.cfg.URL == "" {
		return o.bundledResult(o.logger)
	}

	v, err, _ := o.group.Do(o.cfg.URL, func() (interface{}, error) {
		return o.sync(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.FetchResult), nil
}

// ClearCache removes the cached catalog and all associated metadata.
func (o *Orchestrator) ClearCache(ctx context.Context) {
	o.cache.Clear(ctx)
}

func (o *Orchestrator) sync(ctx context.Context) (*catalog.FetchResult, error) {
	logger := o.logger.With().Str("sync_id", uuid.NewString()[:8]).Logger()

	sourceURL, err := validation.ValidateSourceURL(o.cfg.URL, o.cfg.EnforceHTTPS)
	if err != nil {
		// An invalid endpoint enters the fallback chain exactly like a
		// failed fetch.
		logger.Warn().Err(err).Str("url", o.cfg.URL).Msg("Catalog URL rejected before fetch.")
		return o.fallback(ctx, logger, &catalog.ConfigError{Reason: err.Error()})
	}

	etag, lastModified := "", ""
	if meta, ok := o.cache.Metadata(ctx); ok {
		etag = meta.ETag
		lastModified = meta.LastModified
	}

	resp, err := o.fetcher.Fetch(ctx, sourceURL, etag, lastModified)
	if err != nil {
		logger.Warn().Err(err).Msg("Remote fetch failed.")
		return o.fallback(ctx, logger, err)
	}

	if resp.NotModified {
		return o.notModifiedResult(ctx, logger)
	}

	games, record, err := o.decode(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("Remote payload rejected.")
		return o.fallback(ctx, logger, err)
	}

	// Every successful validated fetch overwrites the cache, even when the
	// payload is byte-identical to what was already stored.
	fetchedAt := o.now()
	o.cache.Save(ctx, games, &catalog.CacheMetadata{
		ETag:            resp.ETag,
		LastModified:    resp.LastModified,
		LastFetchMillis: fetchedAt.UnixMilli(),
		Source:          catalog.SourceRemote,
		Validation:      record,
	})

	logger.Info().Int("games", len(games)).Str("etag", resp.ETag).Msg("Catalog synchronized from remote.")
	return &catalog.FetchResult{
		Games:  games,
		Source: catalog.SourceRemote,
		Metadata: catalog.ResultMetadata{
			FetchTimeMillis: fetchedAt.UnixMilli(),
			FromCache:       false,
			ETag:            resp.ETag,
			LastModified:    resp.LastModified,
		},
	}, nil
}

// notModifiedResult handles a 304: a success only when a cached copy exists,
// otherwise it escalates into the fallback chain so callers never receive an
// empty catalog.
func (o *Orchestrator) notModifiedResult(ctx context.Context, logger zerolog.Logger) (*catalog.FetchResult, error) {
	games, ok := o.cache.Catalog(ctx)
	if !ok || len(games) == 0 {
		logger.Warn().Msg("Server returned 304 but no cached catalog exists.")
		return o.fallback(ctx, logger, fmt.Errorf("not modified without a cached copy: %w", catalog.ErrNoCachedCatalog))
	}

	meta := catalog.ResultMetadata{
		FetchTimeMillis: o.now().UnixMilli(),
		FromCache:       true,
	}
	if stored, hasMeta := o.cache.Metadata(ctx); hasMeta {
		meta.ETag = stored.ETag
		meta.LastModified = stored.LastModified
	}

	logger.Info().Int("games", len(games)).Msg("Remote confirmed cached catalog is current.")
	return &catalog.FetchResult{
		Games:    games,
		Source:   catalog.SourceRemote,
		Metadata: meta,
	}, nil
}

// fallback resolves cached then bundled, in that order. Exhaustion returns
// an error wrapping the most recent underlying cause.
func (o *Orchestrator) fallback(ctx context.Context, logger zerolog.Logger, cause error) (*catalog.FetchResult, error) {
	if games, ok := o.cache.Catalog(ctx); ok && len(games) > 0 {
		meta := catalog.ResultMetadata{
			FetchTimeMillis: o.now().UnixMilli(),
			FromCache:       true,
		}
		if stored, hasMeta := o.cache.Metadata(ctx); hasMeta {
			meta.ETag = stored.ETag
			meta.LastModified = stored.LastModified
		}
		logger.Info().Int("games", len(games)).Msg("Serving cached catalog.")
		return &catalog.FetchResult{
			Games:    games,
			Source:   catalog.SourceCached,
			Metadata: meta,
		}, nil
	}

	if o.cfg.FallbackToBundled {
		result, err := o.bundledResult(logger)
		if err == nil {
			return result, nil
		}
		cause = fmt.Errorf("bundled tier failed after %v: %w", cause, err)
	}

	return nil, fmt.Errorf("catalog sync exhausted all tiers: %w", cause)
}

// bundledResult loads and decodes the app-shipped catalog. It runs through
// the same validation pipeline as remote data; bundled files drift from the
// schema too.
func (o *Orchestrator) bundledResult(logger zerolog.Logger) (*catalog.FetchResult, error) {
	if o.bundled == nil {
		return nil, fmt.Errorf("no bundled catalog configured")
	}
	raw, err := o.bundled.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load bundled catalog: %w", err)
	}
	games, _, err := o.decode(raw)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("games", len(games)).Msg("Serving bundled catalog.")
	return &catalog.FetchResult{
		Games:  games,
		Source: catalog.SourceBundled,
		Metadata: catalog.ResultMetadata{
			FetchTimeMillis: o.now().UnixMilli(),
			FromCache:       false,
		},
	}, nil
}

// decode turns a raw payload into a catalog. With ValidateSchema on, the
// validator both checks and sanitizes; a failed validation rejects the whole
// payload, never a partial catalog. With it off the payload only has to
// decode as an entry array within the size bound.
func (o *Orchestrator) decode(raw []byte) (catalog.Catalog, catalog.ValidationRecord, error) {
	if o.cfg.ValidateSchema {
		result := o.validator.Validate(raw)
		record := catalog.ValidationRecord{Passed: result.Valid, Errors: result.Errors}
		if !result.Valid {
			return nil, record, &catalog.ValidationError{Errors: result.Errors}
		}
		return result.Sanitized, record, nil
	}

	var games catalog.Catalog
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, catalog.ValidationRecord{}, &catalog.FormatError{Reason: err.Error()}
	}
	if len(games) > catalog.MaxEntries {
		return nil, catalog.ValidationRecord{}, &catalog.FormatError{
			Reason: fmt.Sprintf("catalog has %d entries, maximum is %d", len(games), catalog.MaxEntries),
		}
	}
	return games, catalog.ValidationRecord{Skipped: true}, nil
}
