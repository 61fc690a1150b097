package transport

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

// Coordinator serialises credential refreshes around failed requests. However
// many requests fail concurrently, exactly one refresh call is issued per
// failure episode: the first failure moves the coordinator from idle to
// refreshing, every failure observed meanwhile joins a FIFO wait queue. On
// success the queue is drained in arrival order, each request reissued with
// the new access token. On failure every waiter is rejected with
// ErrRefreshExhausted, the session is logged out once, and the logout signal
// fires so the caller can navigate to the login entry point.
type Coordinator struct {
	session  Session
	base     http.RoundTripper
	logger   zerolog.Logger
	onLogout func()

	lock       sync.Mutex
	refreshing bool
	queue      []*pendingRequest
}

// pendingRequest is one queued "redo this call with a fresh credential" unit.
type pendingRequest struct {
	id   string
	req  *http.Request
	done chan replayOutcome
}

type replayOutcome struct {
	resp *http.Response
	err  error
}

// CoordinatorOption modifies a Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the logger (primarily for testing)
func WithCoordinatorLogger(logger zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithLogoutSignal registers a callback fired after a failed refresh forces
// logout. Typically navigates to the login route.
func WithLogoutSignal(onLogout func()) CoordinatorOption {
	return func(c *Coordinator) {
		c.onLogout = onLogout
	}
}

// NewCoordinator creates a Coordinator replaying requests through base.
func NewCoordinator(session Session, base http.RoundTripper, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		session: session,
		base:    base,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Replay queues req behind the in-flight refresh, starting one if the
// coordinator is idle, and returns the outcome of resending the request with
// the refreshed credential. The caller that starts the episode performs the
// refresh and drains the queue; everyone else just waits.
func (c *Coordinator) Replay(req *http.Request) (*http.Response, error) {
	p := &pendingRequest{
		id:   uuid.NewString(),
		req:  req,
		done: make(chan replayOutcome, 1),
	}

	c.lock.Lock()
	c.queue = append(c.queue, p)
	startsEpisode := !c.refreshing
	if startsEpisode {
		c.refreshing = true
	}
	c.lock.Unlock()

	c.logger.Debug().Str("request_id", p.id).Str("url", req.URL.String()).Bool("starts_refresh", startsEpisode).
		Msg("queued for credential refresh")

	if startsEpisode {
		// The refresh outlives any single caller; detach it from this
		// request's cancellation.
		c.refreshAndDrain(context.WithoutCancel(req.Context()))
	}

	select {
	case outcome := <-p.done:
		return outcome.resp, outcome.err
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
}

func (c *Coordinator) refreshAndDrain(ctx context.Context) {
	token, refreshErr := c.session.RefreshCredential(ctx)

	// Snapshot and reset under one lock: every request queued up to this
	// point belongs to this episode, anything arriving later is fresh input.
	c.lock.Lock()
	pending := c.queue
	c.queue = nil
	c.refreshing = false
	c.lock.Unlock()

	if refreshErr != nil {
		c.logger.Warn().Err(refreshErr).Int("rejected", len(pending)).Msg("credential refresh failed, logging out")
		c.session.Logout()
		if c.onLogout != nil {
			c.onLogout()
		}
		for _, p := range pending {
			p.done <- replayOutcome{err: clienterrors.Wrapf(clienterrors.ErrRefreshExhausted, "[Coordinator] request %s not replayed: %v", p.id, refreshErr)}
		}
		return
	}

	c.logger.Debug().Int("replaying", len(pending)).Msg("credential refreshed, draining queue")
	for _, p := range pending {
		resp, err := c.resend(p.req, token)
		p.done <- replayOutcome{resp: resp, err: err}
	}
}

// pending reports the current wait-queue depth.
func (c *Coordinator) pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.queue)
}

// resend reissues a queued request with the fresh access token. The body is
// rebuilt through GetBody so replays do not reuse a consumed reader.
func (c *Coordinator) resend(req *http.Request, token string) (*http.Response, error) {
	replay := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, clienterrors.Wrapf(err, "[Coordinator.resend] rewind request body")
		}
		replay.Body = body
	}
	replay.Header.Set("Authorization", "Bearer "+token)
	return c.base.RoundTrip(replay)
}
