package transport

import "context"

// Session is the slice of the session store the transport layer depends on:
// reading the current access token, performing a credential refresh, and
// clearing the session when refresh is exhausted.
type Session interface {
	CurrentAccessToken() string
	RefreshCredential(ctx context.Context) (string, error)
	Logout()
}
