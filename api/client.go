package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-client/internal/config"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/menu"
	"github.com/jrsteele09/go-session-client/session"
	"github.com/jrsteele09/go-session-client/users"
)

// Client is the REST client for the protected API. It implements session.API
// and menu.Fetcher. Credential attachment and refresh recovery are not its
// business: they live in the transport.Interceptor carried by the injected
// http.Client.
type Client struct {
	httpClient *http.Client
	baseURL    string

	loginPath   string
	refreshPath string
	profilePath string
	menuPath    string

	logger        zerolog.Logger
	retryInterval time.Duration
	maxRetries    uint64
}

var (
	_ session.API  = (*Client)(nil)
	_ menu.Fetcher = (*Client)(nil)
)

// Option modifies a Client instance.
type Option func(*Client)

// WithLogger sets the logger (primarily for testing)
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetry tunes the transient-failure retry on idempotent GETs.
func WithRetry(initialInterval time.Duration, maxRetries uint64) Option {
	return func(c *Client) {
		c.retryInterval = initialInterval
		c.maxRetries = maxRetries
	}
}

// New creates a Client for the API described by cfg, sending requests through
// httpClient.
func New(cfg config.APIConfig, httpClient *http.Client, options ...Option) *Client {
	c := &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimSuffix(cfg.GetBaseURL(), "/"),
		loginPath:     cfg.GetLoginPath(),
		refreshPath:   cfg.GetRefreshPath(),
		profilePath:   cfg.GetProfilePath(),
		menuPath:      cfg.GetMenuPath(),
		logger:        log.Logger,
		retryInterval: 250 * time.Millisecond,
		maxRetries:    2,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    users.Profile `json:"user"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair and the user snapshot.
func (c *Client) Login(ctx context.Context, username, password string) (*session.LoginResult, error) {
	var decoded loginResponse
	if err := c.post(ctx, c.loginPath, loginRequest{Username: username, Password: password}, &decoded); err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}

	user := decoded.User
	// The login response omits is_active; an account that just authenticated
	// is active.
	user.IsActive = true

	return &session.LoginResult{
		AccessToken:  decoded.Access,
		RefreshToken: decoded.Refresh,
		User:         user,
	}, nil
}

// Refresh exchanges the refresh token for a new access token. The response's
// refresh field is empty unless the server rotated the token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*session.RefreshResult, error) {
	var decoded refreshResponse
	if err := c.post(ctx, c.refreshPath, refreshRequest{Refresh: refreshToken}, &decoded); err != nil {
		return nil, errors.Wrap(err, "[Client.Refresh]")
	}

	return &session.RefreshResult{
		AccessToken:  decoded.Access,
		RefreshToken: decoded.Refresh,
	}, nil
}

// FetchProfile returns the current user's profile.
func (c *Client) FetchProfile(ctx context.Context) (*users.Profile, error) {
	var profile users.Profile
	if err := c.get(ctx, c.profilePath, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile]")
	}
	return &profile, nil
}

// FetchMenu returns the caller's permitted navigation entries.
func (c *Client) FetchMenu(ctx context.Context) ([]menu.Entry, error) {
	var entries []menu.Entry
	if err := c.get(ctx, c.menuPath, &entries); err != nil {
		return nil, errors.Wrap(err, "[Client.FetchMenu]")
	}
	return entries, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return clienterrors.Wrapf(clienterrors.ErrNetwork, "POST %s: %v", path, err)
	}
	return decode(resp, out)
}

// get retries transport-level failures with exponential backoff before giving
// up; HTTP error statuses are never retried here.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	var resp *http.Response

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err = c.httpClient.Do(req)
		if err != nil {
			// An exhausted refresh token is not transient; retrying cannot help.
			if clienterrors.Is(err, clienterrors.ErrRefreshExhausted) {
				return backoff.Permanent(err)
			}
			c.logger.Debug().Err(err).Str("path", path).Msg("transient request failure")
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)); err != nil {
		return clienterrors.Wrapf(clienterrors.ErrNetwork, "GET %s: %v", path, err)
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return clienterrors.Wrapf(clienterrors.ErrNetwork, "read response body: %v", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return clienterrors.NewAPIError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "unmarshal response")
	}
	return nil
}
