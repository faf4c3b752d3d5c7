package features

import "errors"

// Sentinel kinds for feature engine errors.
var (
	ErrInvalidWindow = errors.New("invalid rolling window")
	ErrUnknownColumn = errors.New("unknown column")
)
