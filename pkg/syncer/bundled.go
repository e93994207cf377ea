package syncer

import (
	"fmt"
	"io/fs"
)

// BundledSource supplies the statically shipped catalog bytes. Reads are
// synchronous; the data is treated as untrusted and goes through the same
// validation as remote payloads.
type BundledSource interface {
	Load() ([]byte, error)
}

// StaticBundle is a BundledSource over an in-memory byte slice, typically an
// embedded asset.
type StaticBundle []byte

// Load returns the bundled bytes.
func (b StaticBundle) Load() ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("bundled catalog is empty")
	}
	return b, nil
}

// FileBundle is a BundledSource that reads one file from a filesystem, e.g.
// an embed.FS shipped with the app or a path on disk via os.DirFS.
type FileBundle struct {
	FS   fs.FS
	Name string
}

// Load reads the bundled catalog file.
func (b FileBundle) Load() ([]byte, error) {
	data, err := fs.ReadFile(b.FS, b.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled catalog %s: %w", b.Name, err)
	}
	return data, nil
}
