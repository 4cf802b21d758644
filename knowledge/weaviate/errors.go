package weaviate

import "errors"

var (
	// ErrURLRequired indicates no Weaviate URL was configured.
	ErrURLRequired = errors.New("weaviate url is required")

	// ErrQueryFailed indicates Weaviate returned GraphQL errors.
	ErrQueryFailed = errors.New("weaviate query failed")
)
