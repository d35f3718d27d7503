package storage

import (
	"context"
	"time"

	"github.com/iudanet/globalconnect/internal/models"
)

// UserStorage defines interface for user storage operations
type UserStorage interface {
	// CreateUser creates a new user.
	// Returns ErrEmailTaken or ErrUsernameTaken on uniqueness conflicts.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUsername retrieves user by username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdatePassword replaces the password hash of the user
	// Returns ErrUserNotFound if user doesn't exist
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// SetResetToken stores a password reset token valid until expiry
	// Returns ErrUserNotFound if user doesn't exist
	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error

	// ResetPassword sets a new password hash for the user holding token and
	// clears the token. Tokens expired at now are rejected.
	// Returns the user ID, or ErrInvalidToken.
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (string, error)
}
