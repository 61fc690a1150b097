package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/users"
)

// Store owns the current credential pair and authenticated-user snapshot. All
// mutations are atomic: readers and observers always see a fully-updated
// State, never a partial one. The refresh token (and the last-known profile)
// is persisted through a Repo; the access token lives in memory only.
type Store struct {
	api     API
	repo    Repo
	logger  zerolog.Logger
	nowTime func() time.Time

	lock          sync.RWMutex
	credential    *Credential
	user          *users.Profile
	authenticated bool
	observers     []func(State)
}

// Option defines a function type to modify the Store instance.
type Option func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the logger (primarily for testing)
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New initializes a Store with required dependencies. Optional configuration
// can be provided via options.
func New(api API, repo Repo, options ...Option) (*Store, error) {
	if api == nil {
		return nil, errors.New("[session.New] api is required")
	}
	if repo == nil {
		return nil, errors.New("[session.New] repo is required")
	}

	store := &Store{
		api:     api,
		repo:    repo,
		logger:  log.Logger,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(store)
	}

	return store, nil
}

// Login authenticates against the protected API. On success the credential,
// user, and authenticated flag are set atomically, and the refresh token plus
// the user snapshot are persisted. A rejected login maps to
// ErrInvalidCredentials carrying the server's message when it supplied one.
func (s *Store) Login(ctx context.Context, username, password string) (State, error) {
	result, err := s.api.Login(ctx, username, password)
	if err != nil {
		var apiErr *clienterrors.APIError
		if clienterrors.As(err, &apiErr) &&
			(apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return State{}, clienterrors.Wrapf(clienterrors.ErrInvalidCredentials, "[Store.Login] %s", apiErr.Message)
		}
		return State{}, errors.Wrap(err, "[Store.Login] login call failed")
	}

	s.lock.Lock()
	s.credential = &Credential{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		IssuedAt:     s.nowTime(),
	}
	user := result.User
	s.user = &user
	s.authenticated = true
	state := s.stateLocked()
	s.lock.Unlock()

	// A failed persist degrades session restore, not the live session.
	if err := s.repo.Save(&PersistedSession{RefreshToken: result.RefreshToken, User: s.user}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist session")
	}

	s.notify(state)
	return state, nil
}

// RefreshCredential exchanges the persisted refresh token for a new access
// token. No persisted token means immediate ErrRefreshExhausted without a
// network call. A rotated refresh token in the response is persisted; an
// unrotated one is left untouched.
func (s *Store) RefreshCredential(ctx context.Context) (string, error) {
	persisted, err := s.repo.Load()
	if err != nil {
		return "", clienterrors.Wrapf(clienterrors.ErrRefreshExhausted, "[Store.RefreshCredential] load persisted session: %v", err)
	}
	if persisted == nil || persisted.RefreshToken == "" {
		return "", clienterrors.Wrapf(clienterrors.ErrRefreshExhausted, "[Store.RefreshCredential] no refresh token persisted")
	}

	result, err := s.api.Refresh(ctx, persisted.RefreshToken)
	if err != nil {
		return "", clienterrors.Wrapf(clienterrors.ErrRefreshExhausted, "[Store.RefreshCredential] refresh call failed: %v", err)
	}

	refreshToken := persisted.RefreshToken
	if result.RefreshToken != "" {
		refreshToken = result.RefreshToken
	}

	s.lock.Lock()
	s.credential = &Credential{
		AccessToken:  result.AccessToken,
		RefreshToken: refreshToken,
		IssuedAt:     s.nowTime(),
	}
	state := s.stateLocked()
	s.lock.Unlock()

	if result.RefreshToken != "" {
		if err := s.repo.Save(&PersistedSession{RefreshToken: refreshToken, User: persisted.User}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist rotated refresh token")
		}
	}

	s.notify(state)
	return result.AccessToken, nil
}

// RestoreSession rebuilds the session at startup from the persisted refresh
// token. A failed refresh degrades to a clean logged-out state; a failed
// profile fetch after a successful refresh falls back to the cached profile
// snapshot. Never returns an error.
func (s *Store) RestoreSession(ctx context.Context) State {
	if _, err := s.RefreshCredential(ctx); err != nil {
		s.logger.Info().Err(err).Msg("session restore: refresh failed, logging out")
		s.Logout()
		return s.State()
	}

	profile, err := s.api.FetchProfile(ctx)
	if err != nil {
		persisted, loadErr := s.repo.Load()
		if loadErr == nil && persisted != nil && persisted.User != nil {
			s.logger.Warn().Err(err).Msg("session restore: profile fetch failed, using cached snapshot")
			return s.setAuthenticatedUser(persisted.User)
		}
		s.logger.Warn().Err(err).Msg("session restore: profile fetch failed with no cached snapshot, logging out")
		s.Logout()
		return s.State()
	}

	state := s.setAuthenticatedUser(profile)

	s.lock.RLock()
	refreshToken := s.credential.RefreshToken
	s.lock.RUnlock()
	if err := s.repo.Save(&PersistedSession{RefreshToken: refreshToken, User: profile}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist restored session")
	}

	return state
}

// Logout clears the in-memory credential and user, removes the persisted
// session, and marks the store unauthenticated. Safe to call repeatedly.
func (s *Store) Logout() {
	s.lock.Lock()
	changed := s.authenticated || s.credential != nil || s.user != nil
	s.credential = nil
	s.user = nil
	s.authenticated = false
	state := s.stateLocked()
	s.lock.Unlock()

	if err := s.repo.Delete(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete persisted session")
	}

	if changed {
		s.notify(state)
	}
}

// CurrentAccessToken returns the in-memory access token, "" when absent.
// Pure read, no side effects.
func (s *Store) CurrentAccessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.credential == nil {
		return ""
	}
	return s.credential.AccessToken
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.stateLocked()
}

// Subscribe registers an observer invoked with a snapshot after every state
// mutation. Observers are called outside the store's lock.
func (s *Store) Subscribe(observer func(State)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *Store) setAuthenticatedUser(profile *users.Profile) State {
	s.lock.Lock()
	user := *profile
	s.user = &user
	s.authenticated = true
	state := s.stateLocked()
	s.lock.Unlock()

	s.notify(state)
	return state
}

// stateLocked copies the credential and user so a snapshot can never observe
// later mutations. Callers must hold the lock.
func (s *Store) stateLocked() State {
	state := State{IsAuthenticated: s.authenticated}
	if s.credential != nil {
		credential := *s.credential
		state.Credential = &credential
	}
	if s.user != nil {
		user := *s.user
		state.User = &user
	}
	return state
}

func (s *Store) notify(state State) {
	s.lock.RLock()
	observers := make([]func(State), len(s.observers))
	copy(observers, s.observers)
	s.lock.RUnlock()

	for _, observer := range observers {
		observer(state)
	}
}
