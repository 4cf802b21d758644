package config

import "errors"

// ErrInvalidConfig indicates a configuration file that cannot be decoded or
// fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")
