package store

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey indicates a write collided with a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)
