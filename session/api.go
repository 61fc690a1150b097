package session

import (
	"context"

	"github.com/jrsteele09/go-session-client/users"
)

// LoginResult is a successful login: the token pair plus the user snapshot
// the server returns alongside it.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         users.Profile
}

// RefreshResult is a successful token refresh. RefreshToken is "" unless the
// server rotated it.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// API is the slice of the protected API the session store depends on.
type API interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	FetchProfile(ctx context.Context) (*users.Profile, error)
}
