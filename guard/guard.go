package guard

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-client/menu"
)

// Decision is the outcome of an authorization check: either the navigation is
// allowed, or the caller must redirect to RedirectTo. Denial is a routing
// decision, never an error and never a hung navigation.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Menu is the slice of the menu cache the guard depends on.
type Menu interface {
	Load(ctx context.Context) []menu.Entry
	Loaded() bool
	IsPathAllowed(path string) bool
}

// Guard evaluates whether a requested navigation path is permitted by the
// cached menu, populating the cache on first use.
type Guard struct {
	menu           Menu
	forbiddenRoute string
	logger         zerolog.Logger
}

// Option modifies a Guard instance.
type Option func(*Guard)

// WithLogger sets the logger (primarily for testing)
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New creates a Guard that redirects denied navigations to forbiddenRoute.
func New(menu Menu, forbiddenRoute string, options ...Option) *Guard {
	g := &Guard{
		menu:           menu,
		forbiddenRoute: forbiddenRoute,
		logger:         log.Logger,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Authorize checks path against the menu, fetching the menu first when it has
// not been loaded this session. The menu load's own failure mode (empty
// cache) makes denial the default.
func (g *Guard) Authorize(ctx context.Context, path string) Decision {
	if !g.menu.Loaded() {
		g.menu.Load(ctx)
	}

	if g.menu.IsPathAllowed(path) {
		return Decision{Allowed: true}
	}

	g.logger.Debug().Str("path", path).Msg("navigation denied")
	return Decision{RedirectTo: g.forbiddenRoute}
}
