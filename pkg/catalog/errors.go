package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCachedCatalog signals that a tier needed the cached copy (e.g. after
// an HTTP 304) but none was present.
var ErrNoCachedCatalog = errors.New("catalog: no cached copy available")

// ConfigError reports a caller mistake: a malformed or disallowed source
// URL, or missing wiring. It enters the fallback chain like any fetch
// failure rather than surfacing directly.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "catalog: config error: " + e.Reason
}

// HTTPError reports a non-2xx, non-304 response from the remote endpoint.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("catalog: unexpected HTTP status %d", e.Status)
}

// FormatError reports a response payload that cannot be used as a catalog:
// a non-JSON content type, an oversized body, or undecodable JSON.
type FormatError struct {
	ContentType string
	Reason      string
}

func (e *FormatError) Error() string {
	if e.Reason != "" {
		return "catalog: bad payload: " + e.Reason
	}
	return fmt.Sprintf("catalog: unexpected content type %q", e.ContentType)
}

// ValidationError reports a catalog rejected by the validator. Validation is
// atomic per catalog, so the error carries the full diagnostic list even
// when a single entry caused the rejection.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "catalog: validation failed"
	}
	return "catalog: validation failed: " + strings.Join(e.Errors, "; ")
}
