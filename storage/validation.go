package storage

import (
	"fmt"

	"github.com/poiesic/clausewise/core"
)

// ValidateArtifact checks that an artifact can be addressed by a repository.
func ValidateArtifact(artifact *core.Artifact) error {
	if artifact == nil {
		return fmt.Errorf("%w: artifact is nil", ErrInvalidArtifact)
	}
	if artifact.Kind == "" || artifact.Name == "" {
		return fmt.Errorf("%w: kind and name are required", ErrInvalidArtifact)
	}
	return nil
}
