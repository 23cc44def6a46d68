package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrClosed         = errors.New("store is closed")
)
