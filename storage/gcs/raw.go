package gcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/storage"
)

// rawExtensions are tried in order under raw/.
var rawExtensions = []string{".pdf", ".md", ".txt"}

// RawSource reads raw documents from "raw/<base><ext>".
type RawSource struct {
	objects objectStore
}

var _ storage.RawSource = (*RawSource)(nil)

// NewRawSource returns a raw source over the client's bucket.
func NewRawSource(client *Client) (*RawSource, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	return &RawSource{objects: client.store()}, nil
}

// FetchRaw fetches raw/<base>.pdf, falling back to markdown and plain text uploads.
func (s *RawSource) FetchRaw(ctx context.Context, base string) (*storage.RawDocument, error) {
	if base == "" {
		return nil, core.ErrMissingDocumentName
	}
	for _, ext := range rawExtensions {
		name := "raw/" + base + ext
		data, err := s.objects.read(ctx, name)
		if err == nil {
			return &storage.RawDocument{Name: name, Data: data}, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("raw document %s: %w", core.RawName(base), storage.ErrNotFound)
}
