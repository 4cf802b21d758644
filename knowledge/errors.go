package knowledge

import "errors"

var (
	// ErrRepositoryRequired indicates a nil artifact repository was supplied.
	ErrRepositoryRequired = errors.New("artifact repository is required")
)
