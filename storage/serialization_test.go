package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/clausewise/core"
)

func TestMarshalUnmarshalArtifact(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		artifact *core.Artifact
	}{
		{
			name: "markdown artifact",
			artifact: &core.Artifact{
				Kind:         core.ArtifactMarkdown,
				Name:         "policy.md",
				Data:         []byte("## Intro\nHello\n"),
				Digest:       core.IDFromContent("## Intro\nHello\n"),
				SourceDigest: 42,
				InsertedAt:   now,
				UpdatedAt:    now.Add(time.Second),
			},
		},
		{
			name: "empty data and zero times",
			artifact: &core.Artifact{
				Kind: core.ArtifactClauses,
				Name: "policy.json",
				Data: []byte{},
			},
		},
		{
			name: "binary data and max digest",
			artifact: &core.Artifact{
				Kind:   core.ArtifactSections,
				Name:   "title_policy.json",
				Data:   []byte{0x00, 0xff, 0x10, 0x80},
				Digest: core.ID(18446744073709551615),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalArtifact(tt.artifact)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalArtifact(data)
			require.NoError(t, err)
			assert.Equal(t, tt.artifact.Kind, decoded.Kind)
			assert.Equal(t, tt.artifact.Name, decoded.Name)
			assert.Equal(t, tt.artifact.Data, decoded.Data)
			assert.Equal(t, tt.artifact.Digest, decoded.Digest)
			assert.Equal(t, tt.artifact.SourceDigest, decoded.SourceDigest)
			assert.True(t, tt.artifact.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.artifact.UpdatedAt.Equal(decoded.UpdatedAt))
		})
	}
}

func TestUnmarshalArtifact_Invalid(t *testing.T) {
	valid := MarshalArtifact(&core.Artifact{Kind: core.ArtifactMarkdown, Name: "a.md", Data: []byte("text")})

	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalArtifact([]byte{})
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("truncated envelope", func(t *testing.T) {
		_, err := UnmarshalArtifact(valid[:len(valid)/2])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("unknown version", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		bad[0] = 9
		_, err := UnmarshalArtifact(bad)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})
}

func TestErrNotFoundAliasesCore(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound, core.ErrNotFound)
}
