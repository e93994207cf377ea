// Package fetcher performs the conditional HTTP GET against the remote
// catalog endpoint: one absolute timeout per attempt, If-None-Match and
// If-Modified-Since built from the previously stored validators, and a
// bounded retry loop for transient failures. It never touches the cache;
// persisting results is the orchestrator's job.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-catalog-sync/pkg/catalog"
)

// SleepFunc pauses between retry attempts. Injectable so tests run without
// real wall-clock delay; it must return early with the context's error when
// the context is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds the retry and timeout policy for the fetcher.
type Config struct {
	// AttemptTimeout is the absolute budget for a single attempt.
	AttemptTimeout time.Duration
	// MaxAttempts is the total number of attempts, first try included.
	MaxAttempts int
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	// MaxBodyBytes caps the response body read from the remote host.
	MaxBodyBytes int64
	// Sleep overrides the inter-attempt pause. Defaults to a real sleep.
	Sleep SleepFunc
}

// NewConfig returns the default policy: 5s per attempt, 3 attempts total,
// 1s between attempts, 8 MiB body cap.
func NewConfig() *Config {
	return &Config{
		AttemptTimeout: 5 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     time.Second,
		MaxBodyBytes:   8 << 20,
	}
}

// Response is the outcome of a successful fetch. When NotModified is set the
// server returned 304 and Body is empty; otherwise Body holds the raw
// payload and ETag/LastModified echo the validators' conditional headers.
type Response struct {
	Body         []byte
	ETag         string
	LastModified string
	NotModified  bool
}

// CatalogFetcher fetches the raw catalog over HTTP. It is safe for
// concurrent use.
type CatalogFetcher struct {
	cfg    Config
	client *http.Client
	sleep  SleepFunc
	logger zerolog.Logger
}

// New creates a CatalogFetcher. A nil client falls back to a plain
// http.Client; per-attempt deadlines come from the config, not the client.
func New(cfg *Config, client *http.Client, logger zerolog.Logger) *CatalogFetcher {
	if cfg == nil {
		cfg = NewConfig()
	}
	if client == nil {
		client = &http.Client{}
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = realSleep
	}
	return &CatalogFetcher{
		cfg:    *cfg,
		client: client,
		sleep:  sleep,
		logger: logger.With().Str("component", "CatalogFetcher").Logger(),
	}
}

// Fetch GETs rawURL, sending If-None-Match when etag is non-empty and
// If-Modified-Since when lastModified is non-empty, so servers that emit
// only one of the two validators still get a conditional request. Transient
// failures (network errors, timeouts, 5xx) are retried up to the configured
// attempt count with a fixed delay; 4xx responses and bad payloads are not.
// After the attempts are exhausted the last error is returned.
func (f *CatalogFetcher) Fetch(ctx context.Context, rawURL, etag, lastModified string) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := f.sleep(ctx, f.cfg.RetryDelay); err != nil {
				return nil, fmt.Errorf("fetch cancelled between attempts: %w", err)
			}
		}

		resp, err := f.attempt(ctx, rawURL, etag, lastModified)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
		f.logger.Warn().Err(err).Int("attempt", attempt).Str("url", rawURL).Msg("Fetch attempt failed.")
	}
	return nil, lastErr
}

func (f *CatalogFetcher) attempt(ctx context.Context, rawURL, etag, lastModified string) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &catalog.ConfigError{Reason: fmt.Sprintf("invalid request for %q: %v", rawURL, err)}
	}
	req.Header.Set("Accept", "application/json")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error fetching %s: %w", rawURL, err)
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusNotModified:
		return &Response{NotModified: true}, nil
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return f.readBody(res)
	default:
		return nil, &catalog.HTTPError{Status: res.StatusCode}
	}
}

func (f *CatalogFetcher) readBody(res *http.Response) (*Response, error) {
	contentType := res.Header.Get("Content-Type")
	if !isJSONContentType(contentType) {
		return nil, &catalog.FormatError{ContentType: contentType}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("network error reading body: %w", err)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, &catalog.FormatError{
			ContentType: contentType,
			Reason:      fmt.Sprintf("response body exceeds %d bytes", f.cfg.MaxBodyBytes),
		}
	}

	return &Response{
		Body:         body,
		ETag:         res.Header.Get("ETag"),
		LastModified: res.Header.Get("Last-Modified"),
	}, nil
}

// retryable classifies an attempt error: server-side (5xx) and network-level
// failures are transient, everything typed (4xx, format, config) is not.
func retryable(err error) bool {
	var httpErr *catalog.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500
	}
	var formatErr *catalog.FormatError
	if errors.As(err, &formatErr) {
		return false
	}
	var configErr *catalog.ConfigError
	if errors.As(err, &configErr) {
		return false
	}
	return true
}

func isJSONContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
