package syncer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-catalog-sync/pkg/cachestore"
	"github.com/illmade-knight/go-catalog-sync/pkg/catalog"
	"github.com/illmade-knight/go-catalog-sync/pkg/fetcher"
	"github.com/illmade-knight/go-catalog-sync/pkg/syncer"
)

// rewriteTransport routes every request to the test server regardless of the
// configured host, so the pipeline can be exercised end to end with a
// production-looking https endpoint.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

// TestSync_EndToEnd drives the full stack: real fetcher against an httptest
// server, validation, persistence, and a conditional second fetch.
func TestSync_EndToEnd(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(`[{"id":"g1","title":"Game","image":"https://img.test/g1.png","url":"https://play.test/g1"}]`))
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	client := &http.Client{Transport: rewriteTransport{target: serverURL}}

	store := cachestore.NewMemoryStore()
	cache := cachestore.NewCatalogCache(store, zerolog.Nop())
	orchestrator, err := syncer.New(
		syncer.NewConfig("https://ok.test/catalog.json"),
		syncer.Dependencies{
			Fetcher: fetcher.New(fetcher.NewConfig(), client, zerolog.Nop()),
			Cache:   cache,
		},
		zerolog.Nop(),
	)
	require.NoError(t, err)

	// First call: full fetch, validated, persisted.
	first, err := orchestrator.FetchCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.SourceRemote, first.Source)
	assert.False(t, first.Metadata.FromCache)
	assert.Equal(t, `"v1"`, first.Metadata.ETag)
	require.Len(t, first.Games, 1)
	assert.Equal(t, "g1", first.Games[0].ID)
	assert.Equal(t, "Game", first.Games[0].Title)
	assert.Equal(t, "https://img.test/g1.png", first.Games[0].ImageURL)
	assert.Equal(t, "https://play.test/g1", first.Games[0].PlayURL)
	assert.Equal(t, int32(1), requests.Load())

	// Second call: conditional fetch answered 304, served from cache but
	// tagged remote.
	second, err := orchestrator.FetchCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.SourceRemote, second.Source)
	assert.True(t, second.Metadata.FromCache)
	assert.Equal(t, first.Games, second.Games)
	assert.Equal(t, int32(2), requests.Load())
}
