// Package validation checks and sanitizes untrusted catalog payloads. It is
// pure: no I/O, no logging, and Validate never panics or returns a Go error
// for bad input — every outcome is a structured Result.
//
// Validation is atomic per catalog. A single malformed entry invalidates the
// whole batch; the Result still carries every per-entry error so callers can
// diagnose the payload.
package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/illmade-knight/go-catalog-sync/pkg/catalog"
)

// Maximum lengths for the plain string fields. These mirror the validate
// tags on catalog.GameEntry; plain fields are truncated to them during
// sanitization, URL fields are rejected by tag when they exceed theirs.
const (
	maxIDLen          = 100
	maxTitleLen       = 200
	maxOrientationLen = 32
	maxCategoryLen    = 64
	maxDescriptionLen = 1000
	maxReasonLen      = 200
)

// unsafeMarkupPatterns match content that must cause outright rejection of
// an entry: embedded active markup, script-capable URL schemes, and inline
// event-handler attributes. Matching is done against the raw, uncleaned
// value so nothing can hide behind the trimming step.
var unsafeMarkupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*(script|iframe|object|embed|form)\b`),
	regexp.MustCompile(`(?i)\b(?:javascript|vbscript|data)\s*:`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
}

// Result is the structured outcome of a validation pass. Sanitized is only
// populated when Valid is true.
type Result struct {
	Valid     bool
	Errors    []string
	Sanitized catalog.Catalog
}

// Validator validates raw catalog payloads against the GameEntry schema.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. The underlying go-playground instance caches
// struct metadata, so one Validator should be shared rather than recreated
// per call.
func New() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks raw against the catalog schema and returns the sanitized
// catalog when every entry passes. The top level must be a JSON array of at
// most catalog.MaxEntries objects.
func (v *Validator) Validate(raw []byte) Result {
	var rawEntries []json.RawMessage
	if err := json.Unmarshal(raw, &rawEntries); err != nil {
		return Result{Errors: []string{fmt.Sprintf("payload is not a JSON array: %v", err)}}
	}
	if rawEntries == nil {
		return Result{Errors: []string{"payload is not a JSON array: got null"}}
	}
	if len(rawEntries) > catalog.MaxEntries {
		return Result{Errors: []string{fmt.Sprintf("catalog has %d entries, maximum is %d", len(rawEntries), catalog.MaxEntries)}}
	}

	var errs []string
	sanitized := make(catalog.Catalog, 0, len(rawEntries))
	for i, rawEntry := range rawEntries {
		entry, entryErrs := v.sanitizeEntry(i, rawEntry)
		if len(entryErrs) > 0 {
			errs = append(errs, entryErrs...)
			continue
		}
		sanitized = append(sanitized, entry)
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Valid: true, Sanitized: sanitized}
}

// sanitizeEntry cleans a single entry and returns every problem found with
// it. An entry with any error is rejected whole, never partially cleaned.
func (v *Validator) sanitizeEntry(idx int, raw json.RawMessage) (catalog.GameEntry, []string) {
	var entry catalog.GameEntry
	// Unmarshalling into typed string fields also enforces string-typedness:
	// a numeric id or title fails here.
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, []string{fmt.Sprintf("entry %d: malformed entry: %v", idx, err)}
	}

	var errs []string
	plainFields := []struct {
		name string
		val  *string
		max  int
	}{
		{"id", &entry.ID, maxIDLen},
		{"title", &entry.Title, maxTitleLen},
		{"orientation", &entry.Orientation, maxOrientationLen},
		{"category", &entry.Category, maxCategoryLen},
		{"description", &entry.Description, maxDescriptionLen},
		{"disabledReason", &entry.DisabledReason, maxReasonLen},
	}
	for _, f := range plainFields {
		if containsUnsafeMarkup(*f.val) {
			errs = append(errs, fmt.Sprintf("entry %d: field %q contains unsafe content", idx, f.name))
			continue
		}
		*f.val = cleanString(*f.val, f.max)
	}

	urlFields := []struct {
		name string
		val  *string
	}{
		{"image", &entry.ImageURL},
		{"url", &entry.PlayURL},
	}
	for _, f := range urlFields {
		if containsUnsafeMarkup(*f.val) {
			errs = append(errs, fmt.Sprintf("entry %d: field %q contains unsafe content", idx, f.name))
			continue
		}
		normalized, err := NormalizeURL(*f.val)
		if err != nil {
			errs = append(errs, fmt.Sprintf("entry %d: field %q: %v", idx, f.name, err))
			continue
		}
		*f.val = normalized
	}

	if err := v.validate.Struct(&entry); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("entry %d: field %q failed %q validation", idx, fe.Field(), fe.Tag()))
			}
		} else {
			errs = append(errs, fmt.Sprintf("entry %d: %v", idx, err))
		}
	}

	return entry, errs
}

// NormalizeURL parses raw with the strict net/url parser, applies the URL
// safety rules (absolute, http/https, non-empty non-loopback host, no ".."
// traversal in host or path) and returns the canonically re-serialized form.
func NormalizeURL(raw string) (string, error) {
	u, err := parseSafeURL(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// ValidateSourceURL applies the same rules as NormalizeURL to the configured
// catalog endpoint, additionally requiring https when enforceHTTPS is set.
// It is meant to run before any network call.
func ValidateSourceURL(raw string, enforceHTTPS bool) (string, error) {
	u, err := parseSafeURL(raw)
	if err != nil {
		return "", err
	}
	if enforceHTTPS && u.Scheme != "https" {
		return "", fmt.Errorf("catalog source must use https, got %q", u.Scheme)
	}
	return u.String(), nil
}

func parseSafeURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("unparseable URL: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("URL must be absolute")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("disallowed URL scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("URL must have a host")
	}
	if isLoopbackHost(u.Hostname()) {
		return nil, fmt.Errorf("loopback host %q is not allowed", u.Hostname())
	}
	if hasTraversal(u) {
		return nil, fmt.Errorf("URL contains path traversal")
	}
	return u, nil
}

func isLoopbackHost(host string) bool {
	h := strings.ToLower(host)
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback() || ip.IsUnspecified()
	}
	return false
}

func hasTraversal(u *url.URL) bool {
	if strings.Contains(u.Host, "..") {
		return true
	}
	for _, seg := range strings.Split(u.EscapedPath(), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// cleanString trims whitespace, drops control characters and truncates to
// max runes. Rejection of dangerous content happens before this step, so
// cleaning never masks an unsafe value.
func cleanString(s string, max int) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if runes := []rune(s); len(runes) > max {
		s = string(runes[:max])
	}
	return s
}

func containsUnsafeMarkup(s string) bool {
	for _, p := range unsafeMarkupPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
