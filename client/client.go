// Package client wires the session client together: one constructor builds
// the interceptor-equipped HTTP client, the API client, the session store,
// the menu cache, and the authorization guard, with explicit dependencies
// throughout so tests can substitute any piece.
package client

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-client/api"
	"github.com/jrsteele09/go-session-client/guard"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/menu"
	"github.com/jrsteele09/go-session-client/session"
	"github.com/jrsteele09/go-session-client/session/filerepo"
	"github.com/jrsteele09/go-session-client/transport"
)

// Client aggregates the assembled components.
type Client struct {
	Config  config.Config
	HTTP    *http.Client
	API     *api.Client
	Session *session.Store
	Menu    *menu.Cache
	Guard   *guard.Guard
}

type settings struct {
	repo         session.Repo
	logger       zerolog.Logger
	logoutSignal func()
}

// Option modifies the assembly.
type Option func(*settings)

// WithSessionRepo substitutes the session persistence (default: JSON file
// under the configured data folder).
func WithSessionRepo(repo session.Repo) Option {
	return func(s *settings) {
		s.repo = repo
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithLogoutSignal registers a callback fired when a failed refresh forces
// logout, so the caller can navigate to the login entry point.
func WithLogoutSignal(onLogout func()) Option {
	return func(s *settings) {
		s.logoutSignal = onLogout
	}
}

// New assembles a Client from cfg.
//
// The interceptor is constructed first and bound to the session store after
// the store exists: the store's API client needs an HTTP client that already
// carries the interceptor, while the interceptor needs the store for tokens
// and refreshes. Login and refresh calls are exempt from interception, so the
// store's own traffic never recurses into the refresh machinery.
func New(cfg config.Config, options ...Option) (*Client, error) {
	s := settings{logger: log.Logger}
	for _, opt := range options {
		opt(&s)
	}

	if s.repo == nil {
		repo, err := filerepo.New(cfg.GetDataFolder())
		if err != nil {
			return nil, errors.Wrap(err, "[client.New] session persistence")
		}
		s.repo = repo
	}

	interceptorOpts := []transport.InterceptorOption{
		transport.WithExemptPaths(cfg.GetLoginPath(), cfg.GetRefreshPath()),
		transport.WithRefreshOnForbidden(cfg.GetRefreshOnForbidden()),
		transport.WithInterceptorLogger(s.logger),
	}
	if s.logoutSignal != nil {
		interceptorOpts = append(interceptorOpts, transport.WithInterceptorLogoutSignal(s.logoutSignal))
	}
	interceptor := transport.NewInterceptor(cfg.GetBaseURL(), interceptorOpts...)

	httpClient := &http.Client{
		Transport: interceptor,
		Timeout:   cfg.GetHTTPTimeout(),
	}

	apiClient := api.New(cfg, httpClient, api.WithLogger(s.logger))

	store, err := session.New(apiClient, s.repo, session.WithLogger(s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] session store")
	}
	interceptor.Bind(store)

	cache := menu.NewCache(apiClient, cfg.GetRootSectionPath(), menu.WithLogger(s.logger))

	// The menu reacts to authentication transitions: logging out empties it.
	store.Subscribe(func(state session.State) {
		if !state.IsAuthenticated {
			cache.Reset()
		}
	})

	return &Client{
		Config:  cfg,
		HTTP:    httpClient,
		API:     apiClient,
		Session: store,
		Menu:    cache,
		Guard:   guard.New(cache, cfg.GetForbiddenRoute(), guard.WithLogger(s.logger)),
	}, nil
}
