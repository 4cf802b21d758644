// Package localfs reads raw documents from a local directory.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/storage"
)

// ErrDirRequired indicates the raw source directory was not configured.
var ErrDirRequired = errors.New("raw document directory is required")

var rawExtensions = []string{".pdf", ".md", ".txt"}

// RawSource resolves "<dir>/<base><ext>", with ext tried in order .pdf, .md, .txt.
// A "raw" subdirectory, when present, is searched first.
type RawSource struct {
	dir string
}

var _ storage.RawSource = (*RawSource)(nil)

// NewRawSource returns a raw source rooted at dir.
func NewRawSource(dir string) (*RawSource, error) {
	if dir == "" {
		return nil, ErrDirRequired
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("raw document directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &RawSource{dir: dir}, nil
}

// FetchRaw reads the first matching file for base.
func (s *RawSource) FetchRaw(ctx context.Context, base string) (*storage.RawDocument, error) {
	if base == "" {
		return nil, core.ErrMissingDocumentName
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, root := range []string{filepath.Join(s.dir, "raw"), s.dir} {
		for _, ext := range rawExtensions {
			path := filepath.Join(root, base+ext)
			data, err := os.ReadFile(path)
			if err == nil {
				return &storage.RawDocument{Name: path, Data: data}, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
		}
	}
	return nil, fmt.Errorf("raw document %s in %s: %w", base, s.dir, storage.ErrNotFound)
}
