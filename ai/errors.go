package ai

import "errors"

var (
	// ErrInvalidMaxAttempts indicates a retry was requested with no attempts.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrConfigRequired indicates a nil Config was passed to a constructor.
	ErrConfigRequired = errors.New("ai config is required")

	// ErrMalformedResponse indicates a model reply that could not be decoded.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrEmptyResponse indicates a model reply with no choices or no content.
	ErrEmptyResponse = errors.New("empty model response")
)
