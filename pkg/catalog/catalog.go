// Package catalog defines the shared data model for the game-catalog
// synchronization pipeline: the game entries themselves, the metadata kept
// alongside the cached copy, and the tagged result every sync call produces.
package catalog

// MaxEntries is the upper bound on the number of games a catalog may carry.
// Payloads longer than this are rejected outright.
const MaxEntries = 1000

// Source identifies which tier of the fallback chain produced a result.
type Source string

const (
	// SourceRemote marks data fetched (or freshness-confirmed via 304) from
	// the remote endpoint during this call.
	SourceRemote Source = "remote"
	// SourceCached marks data served from the persistent cache after the
	// remote tier failed.
	SourceCached Source = "cached"
	// SourceBundled marks data served from the statically bundled catalog.
	SourceBundled Source = "bundled"
)

// GameEntry is a single playable game in the catalog.
//
// The validate tags cover the structural invariants (presence and length
// bounds); URL safety and markup safety are enforced separately by the
// validation package.
type GameEntry struct {
	ID             string `json:"id" validate:"required,max=100"`
	Title          string `json:"title" validate:"required,max=200"`
	ImageURL       string `json:"image" validate:"required,max=2048"`
	PlayURL        string `json:"url" validate:"required,max=2048"`
	Orientation    string `json:"orientation,omitempty" validate:"omitempty,max=32"`
	Category       string `json:"category,omitempty" validate:"omitempty,max=64"`
	Description    string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Enabled        *bool  `json:"enabled,omitempty"`
	DisabledReason string `json:"disabledReason,omitempty" validate:"omitempty,max=200"`
}

// Catalog is an ordered list of game entries.
type Catalog []GameEntry

// ValidationRecord captures the outcome of the last validation pass so it
// can be persisted with the cache metadata. Skipped marks payloads accepted
// with schema validation turned off; such a record never claims Passed.
type ValidationRecord struct {
	Passed  bool     `json:"passed"`
	Skipped bool     `json:"skipped,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// CacheMetadata is persisted next to the cached catalog blob. It is created
// or overwritten on every successful validated remote fetch and read back on
// the next call to build the conditional request headers.
type CacheMetadata struct {
	ETag            string           `json:"etag,omitempty"`
	LastModified    string           `json:"lastModified,omitempty"`
	LastFetchMillis int64            `json:"lastFetchTimestampMs"`
	Source          Source           `json:"source"`
	Validation      ValidationRecord `json:"validation"`
}

// ResultMetadata describes how a FetchResult was produced.
type ResultMetadata struct {
	FetchTimeMillis int64  `json:"fetchTimeMs"`
	FromCache       bool   `json:"fromCache"`
	ETag            string `json:"etag,omitempty"`
	LastModified    string `json:"lastModified,omitempty"`
}

// FetchResult is the uniform, tagged result of a sync call. It is transient:
// constructed per call and never itself persisted beyond what CacheMetadata
// records.
type FetchResult struct {
	Games    Catalog        `json:"games"`
	Source   Source         `json:"source"`
	Metadata ResultMetadata `json:"metadata"`
}
