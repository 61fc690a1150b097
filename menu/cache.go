package menu

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher retrieves the caller's permitted menu from the protected API.
type Fetcher interface {
	FetchMenu(ctx context.Context) ([]Entry, error)
}

// Cache holds the permission-derived menu for the current session. It is
// populated at most once per session (first authorization check or navbar
// render) and cleared on logout. A load failure leaves the cache empty so
// that authorization fails closed.
type Cache struct {
	fetcher  Fetcher
	rootPath string
	logger   zerolog.Logger

	lock       sync.Mutex
	entries    []Entry
	loaded     bool
	loading    bool
	done       chan struct{}
	lastError  string
	generation uint64
}

// CacheOption modifies a Cache instance.
type CacheOption func(*Cache)

// WithLogger sets the logger (primarily for testing)
func WithLogger(logger zerolog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a menu cache. rootPath is the application root section,
// matched exactly rather than by prefix.
func NewCache(fetcher Fetcher, rootPath string, options ...CacheOption) *Cache {
	c := &Cache{
		fetcher:  fetcher,
		rootPath: rootPath,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Load returns the cached entries, fetching them first if no successful fetch
// has happened yet. Concurrent callers coalesce onto a single fetch. Failures
// never escape: the cache stays empty, the error is recorded for display, and
// the caller receives an empty sequence so that authorization denies.
func (c *Cache) Load(ctx context.Context) []Entry {
	c.lock.Lock()
	if c.loaded {
		entries := c.snapshotLocked()
		c.lock.Unlock()
		return entries
	}

	if c.loading {
		done := c.done
		c.lock.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil
		}
		c.lock.Lock()
		entries := c.snapshotLocked()
		c.lock.Unlock()
		return entries
	}

	c.loading = true
	c.done = make(chan struct{})
	done := c.done
	generation := c.generation
	c.lock.Unlock()

	entries, err := c.fetcher.FetchMenu(ctx)

	c.lock.Lock()
	defer c.lock.Unlock()
	c.loading = false
	close(done)

	// A logout while the fetch was in flight invalidated this result.
	if generation != c.generation {
		return nil
	}

	if err != nil {
		c.logger.Error().Err(err).Msg("menu load failed")
		c.entries = nil
		c.loaded = false
		c.lastError = "Could not load menu"
		return nil
	}

	c.entries = entries
	c.loaded = true
	c.lastError = ""
	return c.snapshotLocked()
}

// IsPathAllowed reports whether the cached entries permit navigating to path.
// Pure and synchronous; an empty cache always denies. The root section entry
// matches only exact equality (with or without one trailing slash), every
// other entry matches by prefix so allowed sections cover their descendants.
func (c *Cache) IsPathAllowed(path string) bool {
	c.lock.Lock()
	entries := c.snapshotLocked()
	c.lock.Unlock()

	if len(entries) == 0 {
		return false
	}

	for _, entry := range entries {
		if entry.Path == c.rootPath {
			if path == c.rootPath || path == c.rootPath+"/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, entry.Path) {
			return true
		}
	}
	return false
}

// Entries returns a copy of the cached entries sorted by display order.
func (c *Cache) Entries() []Entry {
	c.lock.Lock()
	entries := c.snapshotLocked()
	c.lock.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})
	return entries
}

// Loaded reports whether a fetch has succeeded this session.
func (c *Cache) Loaded() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.loaded
}

// LastError returns the recorded load failure message, "" when none.
func (c *Cache) LastError() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastError
}

// Reset empties the cache. Called on logout; also discards the result of any
// fetch still in flight.
func (c *Cache) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries = nil
	c.loaded = false
	c.lastError = ""
	c.generation++
}

func (c *Cache) snapshotLocked() []Entry {
	if len(c.entries) == 0 {
		return nil
	}
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}
