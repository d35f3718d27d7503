package storage

import (
	"context"
)

// Ключи защищенного хранилища для пары токенов
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// SecureStorage defines the local secure key-value store for session tokens.
// Values are opaque strings; implementations encrypt them at rest.
type SecureStorage interface {
	// SetItem stores value under key, replacing any previous value
	SetItem(ctx context.Context, key, value string) error

	// GetItem returns the value stored under key
	// Returns ErrNotFound if nothing is stored
	GetItem(ctx context.Context, key string) (string, error)

	// DeleteItem removes the value under key. Deleting a missing key is not an error.
	DeleteItem(ctx context.Context, key string) error
}
