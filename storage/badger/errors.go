package badger

import "errors"

// ErrBackendRequired indicates a repository was constructed without a backend.
var ErrBackendRequired = errors.New("badger backend is required")
