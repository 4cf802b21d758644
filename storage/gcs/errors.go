package gcs

import "errors"

var (
	// ErrBucketRequired indicates no bucket name was configured.
	ErrBucketRequired = errors.New("gcs bucket is required")

	// ErrClientRequired indicates a nil client was passed to a constructor.
	ErrClientRequired = errors.New("gcs client is required")
)
