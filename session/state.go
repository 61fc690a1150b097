package session

import "github.com/jrsteele09/go-session-client/users"

// State is a point-in-time snapshot of the session. Snapshots are values:
// observers and readers never see a partially-updated session.
// IsAuthenticated implies Credential and User are both present.
type State struct {
	Credential      *Credential
	User            *users.Profile
	IsAuthenticated bool
}

// DisplayName is the authenticated user's display name, "" when logged out.
func (s State) DisplayName() string {
	return s.User.DisplayName()
}
