package badger

import (
	"strings"

	"github.com/poiesic/clausewise/core"
)

const (
	artifactPrefix = "art"
	keySeparator   = ":"
)

// makeArtifactKey generates the key for an artifact.
// Format: prefix:kind:name
func makeArtifactKey(kind core.ArtifactKind, name string) []byte {
	prefix := makeArtifactKindPrefix(kind)
	buf := make([]byte, len(prefix)+len(name))
	offset := copy(buf, prefix)
	copy(buf[offset:], name)
	return buf
}

// makeArtifactKindPrefix generates the iteration prefix for one artifact kind.
// Format: prefix:kind:
func makeArtifactKindPrefix(kind core.ArtifactKind) []byte {
	return []byte(artifactPrefix + keySeparator + string(kind) + keySeparator)
}

// artifactNameFromKey strips the kind prefix from an artifact key.
func artifactNameFromKey(kind core.ArtifactKind, key []byte) string {
	return strings.TrimPrefix(string(key), string(makeArtifactKindPrefix(kind)))
}
