package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks a config that loaded but failed Validate;
// ErrLoadConfig marks a file or environment that could not be read.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// invalid wraps err as an ErrInvalidConfig for key.
func invalid(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
}
