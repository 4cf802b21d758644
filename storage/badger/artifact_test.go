package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/storage"
)

func newTestRepo(t *testing.T) storage.ArtifactRepository {
	t.Helper()
	repo, backend, err := NewMemoryArtifactRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestNewArtifactRepository_NilBackend(t *testing.T) {
	_, err := NewArtifactRepository(nil)
	assert.ErrorIs(t, err, ErrBackendRequired)
}

func TestPutGetArtifact(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	in := core.NewArtifact(core.ArtifactMarkdown, "policy.md", []byte("## Intro\nHello\n"), 7)
	stored, err := repo.PutArtifact(ctx, in)
	require.NoError(t, err)
	assert.False(t, stored.InsertedAt.IsZero())
	assert.False(t, stored.UpdatedAt.IsZero())

	got, err := repo.GetArtifact(ctx, core.ArtifactMarkdown, "policy.md")
	require.NoError(t, err)
	assert.Equal(t, in.Data, got.Data)
	assert.Equal(t, in.Digest, got.Digest)
	assert.Equal(t, core.ID(7), got.SourceDigest)
}

func TestPutArtifact_OverwritePreservesInsertedAt(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.PutArtifact(ctx, core.NewArtifact(core.ArtifactClauses, "policy.json", []byte("[1]"), 0))
	require.NoError(t, err)
	insertedAt := first.InsertedAt

	time.Sleep(2 * time.Millisecond)
	second, err := repo.PutArtifact(ctx, core.NewArtifact(core.ArtifactClauses, "policy.json", []byte("[2]"), 0))
	require.NoError(t, err)

	assert.True(t, insertedAt.Equal(second.InsertedAt))
	assert.True(t, second.UpdatedAt.After(insertedAt))

	got, err := repo.GetArtifact(ctx, core.ArtifactClauses, "policy.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("[2]"), got.Data)
}

func TestGetArtifact_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetArtifact(context.Background(), core.ArtifactMarkdown, "missing.md")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestHasArtifact(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ok, err := repo.HasArtifact(ctx, core.ArtifactSections, "title_policy.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.PutArtifact(ctx, core.NewArtifact(core.ArtifactSections, "title_policy.json", []byte("[]"), 0))
	require.NoError(t, err)

	ok, err = repo.HasArtifact(ctx, core.ArtifactSections, "title_policy.json")
	require.NoError(t, err)
	assert.True(t, ok)

	// Same name, different kind, is a different artifact.
	ok, err = repo.HasArtifact(ctx, core.ArtifactClauses, "title_policy.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListArtifacts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, name := range []string{"b.md", "a.md", "c.md"} {
		_, err := repo.PutArtifact(ctx, core.NewArtifact(core.ArtifactMarkdown, name, []byte(name), 0))
		require.NoError(t, err)
	}
	_, err := repo.PutArtifact(ctx, core.NewArtifact(core.ArtifactClauses, "a.json", []byte("[]"), 0))
	require.NoError(t, err)

	names, err := repo.ListArtifacts(ctx, core.ArtifactMarkdown)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, names)

	names, err = repo.ListArtifacts(ctx, core.ArtifactSections)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDeleteArtifact(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.PutArtifact(ctx, core.NewArtifact(core.ArtifactMarkdown, "a.md", []byte("x"), 0))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteArtifact(ctx, core.ArtifactMarkdown, "a.md"))
	err = repo.DeleteArtifact(ctx, core.ArtifactMarkdown, "a.md")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPutArtifact_Invalid(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.PutArtifact(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrInvalidArtifact)

	_, err = repo.PutArtifact(context.Background(), &core.Artifact{Kind: core.ArtifactMarkdown})
	assert.ErrorIs(t, err, storage.ErrInvalidArtifact)
}

func TestArtifactRepository_Closed(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	repo, err := NewArtifactRepository(backend)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = repo.GetArtifact(context.Background(), core.ArtifactMarkdown, "a.md")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestArtifactKeys(t *testing.T) {
	key := makeArtifactKey(core.ArtifactSections, "title_policy.json")
	assert.Equal(t, "art:sections:title_policy.json", string(key))
	assert.Equal(t, "title_policy.json", artifactNameFromKey(core.ArtifactSections, key))
}
