package gcs

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/storage"
)

// Object metadata keys.
const (
	metaDigest       = "clausewise-digest"
	metaSourceDigest = "clausewise-source-digest"
	metaInsertedAt   = "clausewise-inserted-at"
)

// ArtifactRepository implements storage.ArtifactRepository over a bucket.
type ArtifactRepository struct {
	objects objectStore
	owner   *Client
}

var _ storage.ArtifactRepository = (*ArtifactRepository)(nil)

// NewArtifactRepository returns a repository storing artifacts in the client's bucket.
// Closing the repository closes the client.
func NewArtifactRepository(client *Client) (storage.ArtifactRepository, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	repo := newArtifactRepository(client.store())
	repo.owner = client
	return repo, nil
}

func newArtifactRepository(objects objectStore) *ArtifactRepository {
	return &ArtifactRepository{objects: objects}
}

// Close closes the owning client, if any.
func (r *ArtifactRepository) Close() error {
	if r.owner != nil {
		return r.owner.Close()
	}
	return nil
}

// PutArtifact writes the artifact body to "<kind>/<name>".
func (r *ArtifactRepository) PutArtifact(ctx context.Context, artifact *core.Artifact) (*core.Artifact, error) {
	if err := storage.ValidateArtifact(artifact); err != nil {
		return nil, err
	}
	key := objectKey(artifact.Kind, artifact.Name)

	now := time.Now().UTC().Truncate(time.Microsecond)
	insertedAt := now
	if old, err := r.objects.attrs(ctx, key); err == nil {
		if t, ok := parseTime(old.Metadata[metaInsertedAt]); ok {
			insertedAt = t
		} else if !old.Created.IsZero() {
			insertedAt = old.Created
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	} else if !artifact.InsertedAt.IsZero() {
		insertedAt = artifact.InsertedAt
	}

	metadata := map[string]string{
		metaDigest:       strconv.FormatUint(uint64(artifact.Digest), 10),
		metaSourceDigest: strconv.FormatUint(uint64(artifact.SourceDigest), 10),
		metaInsertedAt:   insertedAt.Format(time.RFC3339Nano),
	}
	if err := r.objects.write(ctx, key, contentType(artifact.Kind), artifact.Data, metadata); err != nil {
		return nil, err
	}

	artifact.InsertedAt = insertedAt
	artifact.UpdatedAt = now
	return artifact, nil
}

// GetArtifact reads an artifact and its digest metadata.
func (r *ArtifactRepository) GetArtifact(ctx context.Context, kind core.ArtifactKind, name string) (*core.Artifact, error) {
	key := objectKey(kind, name)
	attrs, err := r.objects.attrs(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := r.objects.read(ctx, key)
	if err != nil {
		return nil, err
	}

	artifact := &core.Artifact{
		Kind:      kind,
		Name:      name,
		Data:      data,
		UpdatedAt: attrs.Updated,
	}
	artifact.Digest = parseDigest(attrs.Metadata[metaDigest], core.DigestBytes(data))
	artifact.SourceDigest = parseDigest(attrs.Metadata[metaSourceDigest], 0)
	if t, ok := parseTime(attrs.Metadata[metaInsertedAt]); ok {
		artifact.InsertedAt = t
	} else {
		artifact.InsertedAt = attrs.Created
	}
	return artifact, nil
}

// HasArtifact checks object existence via its attributes.
func (r *ArtifactRepository) HasArtifact(ctx context.Context, kind core.ArtifactKind, name string) (bool, error) {
	_, err := r.objects.attrs(ctx, objectKey(kind, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// ListArtifacts lists object names under "<kind>/".
func (r *ArtifactRepository) ListArtifacts(ctx context.Context, kind core.ArtifactKind) ([]string, error) {
	prefix := string(kind) + "/"
	keys, err := r.objects.list(ctx, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, prefix)
		// skip nested "directories"
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// DeleteArtifact removes the artifact object.
func (r *ArtifactRepository) DeleteArtifact(ctx context.Context, kind core.ArtifactKind, name string) error {
	return r.objects.remove(ctx, objectKey(kind, name))
}

func objectKey(kind core.ArtifactKind, name string) string {
	return string(kind) + "/" + name
}

func contentType(kind core.ArtifactKind) string {
	if kind == core.ArtifactMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}

func parseDigest(s string, fallback core.ID) core.ID {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fallback
	}
	return core.ID(v)
}

func parseTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
