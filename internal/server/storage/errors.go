package storage

import (
	"errors"
	"fmt"
)

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that a user with the same email or username exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrEmailTaken indicates that the email is already registered.
	// Matches ErrUserAlreadyExists with errors.Is.
	ErrEmailTaken = fmt.Errorf("email taken: %w", ErrUserAlreadyExists)

	// ErrUsernameTaken indicates that the username is already in use.
	// Matches ErrUserAlreadyExists with errors.Is.
	ErrUsernameTaken = fmt.Errorf("username taken: %w", ErrUserAlreadyExists)

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("token not found")

	// ErrInvalidToken indicates that a reset token is unknown or expired
	ErrInvalidToken = errors.New("invalid token")
)
