package repository

import "errors"

// Sentinel kinds for read index errors.
var (
	ErrNotFound = errors.New("not found")
	ErrEmpty    = errors.New("daily table is empty")
)
