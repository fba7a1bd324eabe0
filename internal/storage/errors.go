package storage

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("storage: record not found")

	// ErrStoreClosed indicates an operation was attempted before the
	// store was opened, or after it was closed.
	ErrStoreClosed = errors.New("storage: store is not open")
)
