package storage

import "errors"

// NotFoundError is returned when a node doesn't exist in the cache.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "node not found"
	}

	return "node not found: " + e.ID
}

// ErrEmptyID is returned when a node without an id is stored.
var ErrEmptyID = errors.New("node id is required")
