package filerepo_test

import (
	"testing"

	"github.com/jrsteele09/go-session-client/session"
	"github.com/jrsteele09/go-session-client/session/filerepo"
	"github.com/jrsteele09/go-session-client/users"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadDeleteRoundTrip(t *testing.T) {
	repo, err := filerepo.New(t.TempDir())
	require.NoError(t, err)

	// Nothing persisted yet.
	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, persisted)

	require.NoError(t, repo.Save(&session.PersistedSession{
		RefreshToken: "refresh-1",
		User:         &users.Profile{ID: 7, Username: "jdoe", FirstName: "John"},
	}))

	persisted, err = repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-1", persisted.RefreshToken)
	require.Equal(t, "jdoe", persisted.User.Username)

	// Save replaces wholesale, no merging.
	require.NoError(t, repo.Save(&session.PersistedSession{RefreshToken: "refresh-2"}))
	persisted, err = repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-2", persisted.RefreshToken)
	require.Nil(t, persisted.User)

	require.NoError(t, repo.Delete())
	persisted, err = repo.Load()
	require.NoError(t, err)
	require.Nil(t, persisted)

	// Delete on an already-empty repo is fine.
	require.NoError(t, repo.Delete())
}
