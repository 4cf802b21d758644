package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/storage"
)

// ArtifactRepository implements storage.ArtifactRepository for BadgerDB.
type ArtifactRepository struct {
	backend *Backend
}

var _ storage.ArtifactRepository = (*ArtifactRepository)(nil)

// NewArtifactRepository creates an artifact repository on top of backend.
// The backend stays owned by the caller.
func NewArtifactRepository(backend *Backend) (storage.ArtifactRepository, error) {
	return newArtifactRepository(backend)
}

func newArtifactRepository(backend *Backend) (*ArtifactRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &ArtifactRepository{backend: backend}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *ArtifactRepository) Close() error {
	return nil
}

// PutArtifact stores an artifact, replacing any previous version.
func (r *ArtifactRepository) PutArtifact(ctx context.Context, artifact *core.Artifact) (*core.Artifact, error) {
	if err := storage.ValidateArtifact(artifact); err != nil {
		return nil, err
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeArtifactKey(artifact.Kind, artifact.Name)

		now := time.Now().UTC().Truncate(time.Microsecond)
		old, err := readArtifact(tx, key)
		switch {
		case err == nil:
			artifact.InsertedAt = old.InsertedAt
		case errors.Is(err, storage.ErrNotFound):
			if artifact.InsertedAt.IsZero() {
				artifact.InsertedAt = now
			}
		default:
			return err
		}
		artifact.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalArtifact(artifact)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("stored artifact", "kind", artifact.Kind, "name", artifact.Name, "bytes", len(artifact.Data))
	return artifact, nil
}

// GetArtifact retrieves an artifact by kind and name.
func (r *ArtifactRepository) GetArtifact(ctx context.Context, kind core.ArtifactKind, name string) (*core.Artifact, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var artifact *core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		artifact, err = readArtifact(tx, makeArtifactKey(kind, name))
		return err
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", kind, name, err)
	}
	return artifact, nil
}

// HasArtifact reports whether an artifact exists.
func (r *ArtifactRepository) HasArtifact(ctx context.Context, kind core.ArtifactKind, name string) (bool, error) {
	if r.backend.IsClosed() {
		return false, storage.ErrStorageClosed
	}

	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeArtifactKey(kind, name))
		if err == nil {
			found = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}, false)
	return found, err
}

// ListArtifacts returns artifact names of one kind in key order.
func (r *ArtifactRepository) ListArtifacts(ctx context.Context, kind core.ArtifactKind) ([]string, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var names []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeArtifactKindPrefix(kind)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			names = append(names, artifactNameFromKey(kind, iter.Item().KeyCopy(nil)))
		}
		return nil
	}, false)
	return names, err
}

// DeleteArtifact removes an artifact.
func (r *ArtifactRepository) DeleteArtifact(ctx context.Context, kind core.ArtifactKind, name string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeArtifactKey(kind, name)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%s/%s: %w", kind, name, storage.ErrNotFound)
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func readArtifact(tx *badger.Txn, key []byte) (*core.Artifact, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var artifact *core.Artifact
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		artifact, unmarshalErr = storage.UnmarshalArtifact(val)
		return unmarshalErr
	})
	return artifact, err
}
