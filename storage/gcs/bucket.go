package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/poiesic/clausewise/storage"
)

// objectAttrs is the subset of object attributes the repository reads.
type objectAttrs struct {
	Metadata map[string]string
	Created  time.Time
	Updated  time.Time
}

// objectStore is the bucket surface used by the repository and raw source.
// Missing objects are reported as storage.ErrNotFound.
type objectStore interface {
	read(ctx context.Context, name string) ([]byte, error)
	write(ctx context.Context, name, contentType string, data []byte, metadata map[string]string) error
	attrs(ctx context.Context, name string) (*objectAttrs, error)
	list(ctx context.Context, prefix string) ([]string, error)
	remove(ctx context.Context, name string) error
}

// bucketStore implements objectStore over a Cloud Storage bucket.
type bucketStore struct {
	bucket *gcstorage.BucketHandle
	prefix string
}

var _ objectStore = (*bucketStore)(nil)

func (b *bucketStore) key(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + "/" + name
}

func (b *bucketStore) read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.bucket.Object(b.key(name)).NewReader(ctx)
	if err != nil {
		return nil, mapErr(name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %s: %w", name, err)
	}
	return data, nil
}

func (b *bucketStore) write(ctx context.Context, name, contentType string, data []byte, metadata map[string]string) error {
	w := b.bucket.Object(b.key(name)).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache, no-store, must-revalidate"
	w.Metadata = metadata

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write GCS object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", name, err)
	}
	return nil
}

func (b *bucketStore) attrs(ctx context.Context, name string) (*objectAttrs, error) {
	a, err := b.bucket.Object(b.key(name)).Attrs(ctx)
	if err != nil {
		return nil, mapErr(name, err)
	}
	return &objectAttrs{Metadata: a.Metadata, Created: a.Created, Updated: a.Updated}, nil
}

func (b *bucketStore) list(ctx context.Context, prefix string) ([]string, error) {
	it := b.bucket.Objects(ctx, &gcstorage.Query{Prefix: b.key(prefix)})
	var names []string
	for {
		a, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list GCS objects under %s: %w", prefix, err)
		}
		names = append(names, strings.TrimPrefix(a.Name, b.key("")))
	}
	return names, nil
}

func (b *bucketStore) remove(ctx context.Context, name string) error {
	if err := b.bucket.Object(b.key(name)).Delete(ctx); err != nil {
		return mapErr(name, err)
	}
	return nil
}

func mapErr(name string, err error) error {
	if errors.Is(err, gcstorage.ErrObjectNotExist) {
		return fmt.Errorf("%s: %w", name, storage.ErrNotFound)
	}
	return fmt.Errorf("GCS object %s: %w", name, err)
}
