package auth

import (
	"context"

	"github.com/iudanet/globalconnect/internal/client/api"
	pkgapi "github.com/iudanet/globalconnect/pkg/api"
)

// APIClient is the subset of the backend client the session needs
type APIClient interface {
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error)
	Me(ctx context.Context) (*pkgapi.UserResponse, error)
	Logout(ctx context.Context) (*pkgapi.MessageResponse, error)
	SetRefreshListener(l api.RefreshListener)
}

// Service defines the authentication context used by the CLI
type Service interface {
	// Login authenticates, stores both tokens and loads the current user
	Login(ctx context.Context, email, password string) error

	// Register creates an account, stores both tokens and loads the current user
	Register(ctx context.Context, email, password, username string) error

	// Logout notifies the server (best effort) and always clears local tokens
	Logout(ctx context.Context) error

	// RefreshUser re-fetches the current user, keeping the old one on failure
	RefreshUser(ctx context.Context) error

	// Restore resumes a session from stored tokens at startup
	Restore(ctx context.Context) error

	// User returns the current user or nil
	User() *User

	// State returns the current session state
	State() State

	// IsAuthenticated reports whether a user is loaded
	IsAuthenticated() bool
}
