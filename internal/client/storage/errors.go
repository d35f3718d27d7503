package storage

import "errors"

// Common client storage errors
var (
	// ErrNotFound indicates that no value is stored under the key
	ErrNotFound = errors.New("item not found")

	// ErrLocked indicates that the secure store has no encryption key yet
	ErrLocked = errors.New("secure storage is locked")

	// ErrWrongKey indicates that the key does not match the one the store was created with
	ErrWrongKey = errors.New("secure storage key mismatch")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
