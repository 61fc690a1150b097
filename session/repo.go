package session

import "github.com/jrsteele09/go-session-client/users"

// PersistedSession is the durable slice of session state: the refresh token
// and the last-known user profile. Writes are whole-value replaces, never
// merges.
type PersistedSession struct {
	RefreshToken string         `json:"refresh_token"`
	User         *users.Profile `json:"user,omitempty"`
}

// Repo stores the persisted session. Load returns (nil, nil) when nothing is
// persisted.
type Repo interface {
	Save(persisted *PersistedSession) error
	Load() (*PersistedSession, error)
	Delete() error
}
