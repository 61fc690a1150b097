package transport

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// A replayed request that fails authorization again counts as fresh input and
// may start another refresh episode, but only this many times per originating
// call: a genuinely forbidden resource must not spin refreshes forever.
const maxRefreshEpisodes = 2

// Interceptor is an http.RoundTripper that attaches the current access token
// to requests bound for the protected API and routes authorization failures
// through the refresh Coordinator. Requests outside the protected base URL
// pass through untouched, as do the login and refresh endpoints themselves.
type Interceptor struct {
	base               http.RoundTripper
	baseURL            string
	loginPath          string
	refreshPath        string
	refreshOnForbidden bool
	logger             zerolog.Logger
	logoutSignal       func()

	session     Session
	coordinator *Coordinator
}

var _ http.RoundTripper = (*Interceptor)(nil)

// InterceptorOption modifies an Interceptor instance.
type InterceptorOption func(*Interceptor)

// WithBaseTransport sets the underlying transport (default http.DefaultTransport).
func WithBaseTransport(base http.RoundTripper) InterceptorOption {
	return func(i *Interceptor) {
		i.base = base
	}
}

// WithExemptPaths overrides the login and refresh endpoint paths that never
// get a credential attached and never trigger a refresh.
func WithExemptPaths(loginPath, refreshPath string) InterceptorOption {
	return func(i *Interceptor) {
		i.loginPath = loginPath
		i.refreshPath = refreshPath
	}
}

// WithRefreshOnForbidden treats 403 from the protected API as an expired
// credential in addition to 401. Off by default: a 403 is ambiguous between
// "expired" and "genuinely forbidden".
func WithRefreshOnForbidden(enabled bool) InterceptorOption {
	return func(i *Interceptor) {
		i.refreshOnForbidden = enabled
	}
}

// WithInterceptorLogger sets the logger (primarily for testing)
func WithInterceptorLogger(logger zerolog.Logger) InterceptorOption {
	return func(i *Interceptor) {
		i.logger = logger
	}
}

// WithInterceptorLogoutSignal is forwarded to the Coordinator built in Bind.
func WithInterceptorLogoutSignal(onLogout func()) InterceptorOption {
	return func(i *Interceptor) {
		i.logoutSignal = onLogout
	}
}

// NewInterceptor creates an Interceptor for the given protected API base URL.
// It passes everything through untouched until Bind attaches a session.
func NewInterceptor(baseURL string, options ...InterceptorOption) *Interceptor {
	i := &Interceptor{
		base:        http.DefaultTransport,
		baseURL:     baseURL,
		loginPath:   "/login/",
		refreshPath: "/token/refresh/",
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// Bind attaches the session store and builds the refresh Coordinator. Kept
// separate from construction because the session store's API client needs an
// HTTP client carrying this interceptor.
func (i *Interceptor) Bind(session Session) {
	i.session = session
	opts := []CoordinatorOption{WithCoordinatorLogger(i.logger)}
	if i.logoutSignal != nil {
		opts = append(opts, WithLogoutSignal(i.logoutSignal))
	}
	i.coordinator = NewCoordinator(session, i.base, opts...)
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if i.session == nil || !i.isProtected(req) || i.isExempt(req) {
		return i.base.RoundTrip(req)
	}

	if err := ensureReplayable(req); err != nil {
		return nil, err
	}

	authed := req.Clone(req.Context())
	if token := i.session.CurrentAccessToken(); token != "" {
		authed.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := i.base.RoundTrip(authed)
	if err != nil {
		return nil, err
	}

	for episodes := 0; episodes < maxRefreshEpisodes && i.triggersRefresh(resp.StatusCode); episodes++ {
		i.logger.Debug().Int("status", resp.StatusCode).Str("url", req.URL.String()).
			Msg("authorization failure, delegating to refresh coordinator")
		drain(resp)
		resp, err = i.coordinator.Replay(req)
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// isProtected reports whether the request targets the protected API. Requests
// to anything else never get a credential attached.
func (i *Interceptor) isProtected(req *http.Request) bool {
	return strings.HasPrefix(req.URL.String(), i.baseURL)
}

// isExempt reports whether the request targets the login or refresh endpoint.
// Those never enter the refresh machine, whatever their response code.
func (i *Interceptor) isExempt(req *http.Request) bool {
	path := req.URL.Path
	return strings.Contains(path, i.loginPath) || strings.Contains(path, i.refreshPath)
}

func (i *Interceptor) triggersRefresh(status int) bool {
	if status == http.StatusUnauthorized {
		return true
	}
	return i.refreshOnForbidden && status == http.StatusForbidden
}

// ensureReplayable buffers the request body when the request carries one
// without a GetBody, so the coordinator can rewind it for replay.
func ensureReplayable(req *http.Request) error {
	if req.Body == nil || req.GetBody != nil {
		return nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return err
	}

	req.Body = io.NopCloser(bytes.NewReader(data))
	req.ContentLength = int64(len(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

// drain discards a response being replaced by a replay so the underlying
// connection can be reused.
func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
