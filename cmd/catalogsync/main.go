// catalogsync runs one synchronization pass against a remote game catalog,
// persisting the result in a local BadgerDB cache, and prints a summary.
// It exists for manual testing and for cron-style refresh jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-catalog-sync/pkg/cachestore"
	"github.com/illmade-knight/go-catalog-sync/pkg/config"
	"github.com/illmade-knight/go-catalog-sync/pkg/fetcher"
	"github.com/illmade-knight/go-catalog-sync/pkg/syncer"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	clearCache := flag.Bool("clear", false, "clear the cached catalog and exit")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := run(*configPath, *clearCache, logger); err != nil {
		logger.Fatal().Err(err).Msg("catalogsync failed")
	}
}

func run(configPath string, clearCache bool, logger zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	store, err := cachestore.OpenBadgerStore(filepath.Join(cfg.DataDir, "catalog"), logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cache := cachestore.NewCatalogCache(store, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if clearCache {
		cache.Clear(ctx)
		logger.Info().Msg("Cache cleared.")
		return nil
	}

	var bundled syncer.BundledSource
	if cfg.Sync.BundledPath != "" {
		dir, name := filepath.Split(cfg.Sync.BundledPath)
		if dir == "" {
			dir = "."
		}
		bundled = syncer.FileBundle{FS: os.DirFS(dir), Name: name}
	}

	fetchCfg := fetcher.NewConfig()
	fetchCfg.AttemptTimeout = cfg.Sync.AttemptTimeout
	fetchCfg.MaxAttempts = cfg.Sync.MaxAttempts
	fetchCfg.RetryDelay = cfg.Sync.RetryDelay

	orchestrator, err := syncer.New(
		&syncer.Config{
			URL:               cfg.Sync.URL,
			FallbackToBundled: cfg.Sync.FallbackToBundled,
			ValidateSchema:    cfg.Sync.ValidateSchema,
			EnforceHTTPS:      cfg.Sync.EnforceHTTPS,
		},
		syncer.Dependencies{
			Fetcher: fetcher.New(fetchCfg, &http.Client{}, logger),
			Cache:   cache,
			Bundled: bundled,
		},
		logger,
	)
	if err != nil {
		return err
	}

	result, err := orchestrator.FetchCatalog(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("source", string(result.Source)).
		Int("games", len(result.Games)).
		Bool("from_cache", result.Metadata.FromCache).
		Str("etag", result.Metadata.ETag).
		Msg("Catalog synchronized.")

	for _, game := range result.Games {
		fmt.Printf("%-24s %s\n", game.ID, game.Title)
	}
	return nil
}
