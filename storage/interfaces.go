package storage

import (
	"context"

	"github.com/poiesic/clausewise/core"
)

// ArtifactRepository persists pipeline artifacts keyed by (kind, name).
// Implementations must be thread-safe and support concurrent access.
// Concurrent writes of the same key are last-write-wins.
type ArtifactRepository interface {
	// PutArtifact stores an artifact, replacing any previous artifact with
	// the same kind and name. InsertedAt is preserved across overwrites;
	// UpdatedAt is set to the write time.
	// Returns the artifact with timestamps populated.
	PutArtifact(ctx context.Context, artifact *core.Artifact) (*core.Artifact, error)

	// GetArtifact retrieves an artifact.
	// Returns ErrNotFound if the artifact doesn't exist.
	GetArtifact(ctx context.Context, kind core.ArtifactKind, name string) (*core.Artifact, error)

	// HasArtifact reports whether an artifact exists without reading its data.
	HasArtifact(ctx context.Context, kind core.ArtifactKind, name string) (bool, error)

	// ListArtifacts returns the names stored under kind in lexical order.
	ListArtifacts(ctx context.Context, kind core.ArtifactKind) ([]string, error)

	// DeleteArtifact removes an artifact.
	// Returns ErrNotFound if the artifact doesn't exist.
	DeleteArtifact(ctx context.Context, kind core.ArtifactKind, name string) error

	// Close releases resources held by the repository.
	Close() error
}

// RawDocument is an unconverted source document.
type RawDocument struct {
	Name string // object name including extension, e.g. "raw/Policy.pdf"
	Data []byte
}

// RawSource fetches raw documents by base name.
type RawSource interface {
	// FetchRaw returns the raw bytes of the document identified by base.
	// Returns an error wrapping ErrNotFound if no such document exists.
	FetchRaw(ctx context.Context, base string) (*RawDocument, error)
}
