package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/session"
	"github.com/jrsteele09/go-session-client/session/repofake"
	"github.com/jrsteele09/go-session-client/users"
)

type fakeAPI struct {
	loginResult   *session.LoginResult
	loginErr      error
	refreshResult *session.RefreshResult
	refreshErr    error
	profile       *users.Profile
	profileErr    error

	loginCalls       int
	refreshCalls     int
	profileCalls     int
	lastRefreshToken string
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*session.LoginResult, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (*session.RefreshResult, error) {
	f.refreshCalls++
	f.lastRefreshToken = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshResult, nil
}

func (f *fakeAPI) FetchProfile(ctx context.Context) (*users.Profile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func testProfile() users.Profile {
	return users.Profile{
		ID:        1,
		Username:  "jdoe",
		Email:     "john.doe@example.com",
		FirstName: "John",
		LastName:  "Doe",
		IsActive:  true,
	}
}

func newStore(t *testing.T, api *fakeAPI, repo *repofake.FakeSessionRepo) *session.Store {
	t.Helper()
	store, err := session.New(api, repo)
	require.NoError(t, err)
	return store
}

func TestLoginPopulatesSessionAndPersists(t *testing.T) {
	api := &fakeAPI{loginResult: &session.LoginResult{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         testProfile(),
	}}
	repo := repofake.NewFakeSessionRepo()
	store := newStore(t, api, repo)

	state, err := store.Login(context.Background(), "jdoe", "password123")
	require.NoError(t, err)

	require.True(t, state.IsAuthenticated)
	require.Equal(t, "John Doe", state.DisplayName())
	require.Equal(t, "access-1", store.CurrentAccessToken())

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-1", persisted.RefreshToken)
	require.Equal(t, "jdoe", persisted.User.Username)
}

func TestLoginRejectedMapsToInvalidCredentials(t *testing.T) {
	api := &fakeAPI{loginErr: clienterrors.NewAPIError(http.StatusUnauthorized, []byte(`{"detail": "No active account found"}`))}
	store := newStore(t, api, repofake.NewFakeSessionRepo())

	_, err := store.Login(context.Background(), "jdoe", "wrong")
	require.Error(t, err)
	require.True(t, clienterrors.Is(err, clienterrors.ErrInvalidCredentials))
	require.Contains(t, err.Error(), "No active account found")
	require.False(t, store.State().IsAuthenticated)
}

func TestLogoutClearsEverythingAndIsIdempotent(t *testing.T) {
	api := &fakeAPI{loginResult: &session.LoginResult{
		AccessToken: "access-1", RefreshToken: "refresh-1", User: testProfile(),
	}}
	repo := repofake.NewFakeSessionRepo()
	store := newStore(t, api, repo)

	_, err := store.Login(context.Background(), "jdoe", "password123")
	require.NoError(t, err)

	store.Logout()
	store.Logout() // second call must be safe

	state := store.State()
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.Credential)
	require.Nil(t, state.User)
	require.Empty(t, store.CurrentAccessToken())

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, persisted)
}

func TestRefreshWithoutPersistedTokenFailsWithoutNetworkCall(t *testing.T) {
	api := &fakeAPI{}
	store := newStore(t, api, repofake.NewFakeSessionRepo())

	_, err := store.RefreshCredential(context.Background())
	require.True(t, clienterrors.Is(err, clienterrors.ErrRefreshExhausted))
	require.Zero(t, api.refreshCalls)
}

func TestRefreshReplacesAccessTokenKeepsRefreshToken(t *testing.T) {
	api := &fakeAPI{refreshResult: &session.RefreshResult{AccessToken: "access-2"}}
	repo := repofake.NewFakeSessionRepo()
	require.NoError(t, repo.Save(&session.PersistedSession{RefreshToken: "refresh-1"}))
	store := newStore(t, api, repo)

	token, err := store.RefreshCredential(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-2", token)
	require.Equal(t, "access-2", store.CurrentAccessToken())
	require.Equal(t, "refresh-1", api.lastRefreshToken)

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-1", persisted.RefreshToken)
}

func TestRefreshPersistsRotatedRefreshToken(t *testing.T) {
	api := &fakeAPI{refreshResult: &session.RefreshResult{AccessToken: "access-2", RefreshToken: "refresh-2"}}
	repo := repofake.NewFakeSessionRepo()
	require.NoError(t, repo.Save(&session.PersistedSession{RefreshToken: "refresh-1"}))
	store := newStore(t, api, repo)

	_, err := store.RefreshCredential(context.Background())
	require.NoError(t, err)

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-2", persisted.RefreshToken)
}

func TestRestoreSessionWithRejectedRefreshEndsLoggedOut(t *testing.T) {
	api := &fakeAPI{refreshErr: clienterrors.NewAPIError(http.StatusUnauthorized, nil)}
	repo := repofake.NewFakeSessionRepo()
	require.NoError(t, repo.Save(&session.PersistedSession{RefreshToken: "stale", User: &users.Profile{Username: "jdoe"}}))
	store := newStore(t, api, repo)

	state := store.RestoreSession(context.Background())

	require.False(t, state.IsAuthenticated)
	require.Empty(t, store.CurrentAccessToken())

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, persisted)
}

func TestRestoreSessionFetchesProfile(t *testing.T) {
	profile := testProfile()
	api := &fakeAPI{
		refreshResult: &session.RefreshResult{AccessToken: "access-2"},
		profile:       &profile,
	}
	repo := repofake.NewFakeSessionRepo()
	require.NoError(t, repo.Save(&session.PersistedSession{RefreshToken: "refresh-1"}))
	store := newStore(t, api, repo)

	state := store.RestoreSession(context.Background())

	require.True(t, state.IsAuthenticated)
	require.Equal(t, "John Doe", state.DisplayName())
	require.Equal(t, "access-2", store.CurrentAccessToken())

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, "jdoe", persisted.User.Username)
}

func TestRestoreSessionFallsBackToCachedProfile(t *testing.T) {
	api := &fakeAPI{
		refreshResult: &session.RefreshResult{AccessToken: "access-2"},
		profileErr:    clienterrors.NewAPIError(0, nil),
	}
	repo := repofake.NewFakeSessionRepo()
	require.NoError(t, repo.Save(&session.PersistedSession{
		RefreshToken: "refresh-1",
		User:         &users.Profile{Username: "jdoe", FirstName: "John"},
	}))
	store := newStore(t, api, repo)

	state := store.RestoreSession(context.Background())

	require.True(t, state.IsAuthenticated)
	require.Equal(t, "John", state.DisplayName())
}

func TestObserversSeeAtomicSnapshots(t *testing.T) {
	api := &fakeAPI{loginResult: &session.LoginResult{
		AccessToken: "access-1", RefreshToken: "refresh-1", User: testProfile(),
	}}
	store := newStore(t, api, repofake.NewFakeSessionRepo())

	var seen []session.State
	store.Subscribe(func(state session.State) {
		seen = append(seen, state)
	})

	_, err := store.Login(context.Background(), "jdoe", "password123")
	require.NoError(t, err)
	store.Logout()

	require.Len(t, seen, 2)
	require.True(t, seen[0].IsAuthenticated)
	require.NotNil(t, seen[0].Credential)
	require.NotNil(t, seen[0].User)
	require.False(t, seen[1].IsAuthenticated)
	require.Nil(t, seen[1].Credential)
	require.Nil(t, seen[1].User)
}

func TestCredentialExpiresAt(t *testing.T) {
	expiry := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiry.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	credential := &session.Credential{AccessToken: signed}
	got, ok := credential.ExpiresAt()
	require.True(t, ok)
	require.True(t, got.Equal(expiry))

	_, ok = (&session.Credential{AccessToken: "not-a-jwt"}).ExpiresAt()
	require.False(t, ok)

	_, ok = (*session.Credential)(nil).ExpiresAt()
	require.False(t, ok)
}
