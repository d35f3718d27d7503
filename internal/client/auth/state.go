package auth

import (
	"time"

	pkgapi "github.com/iudanet/globalconnect/pkg/api"
)

// State is a step of the session lifecycle
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// User is the signed-in account as returned by /auth/me
type User struct {
	CreatedAt    time.Time
	ProfileImage *string
	ID           string
	Email        string
	Username     string
}

func userFromResponse(resp *pkgapi.UserResponse) *User {
	return &User{
		ID:           resp.ID,
		Email:        resp.Email,
		Username:     resp.Username,
		ProfileImage: resp.ProfileImage,
		CreatedAt:    resp.CreatedAt,
	}
}

// Error is a user-facing authentication failure.
// Message is the server's detail when it sent one, otherwise a generic text.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
