package cachestore

// Cache keys for the catalog blob and its metadata. The key table lives here
// and nowhere else; callers go through CatalogCache rather than naming keys
// themselves.
const (
	keyCatalogBlob     = "catalog:blob"
	keyCatalogMetadata = "catalog:meta"
)

// catalogKeys lists every key Clear must remove.
var catalogKeys = []string{
	keyCatalogBlob,
	keyCatalogMetadata,
}
