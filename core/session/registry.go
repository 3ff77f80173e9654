package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/gateway"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrSessionExpired indicates no session exists for the surface. The
	// caller surfaces "please reopen"; it is never a crash.
	ErrSessionExpired = errors.New("session expired for surface")
)

// =============================================================================
// Configuration
// =============================================================================

const (
	DefaultMaxSessions = 1024
	DefaultIdleTTL     = 30 * time.Minute
)

// Config bounds the registry. Sessions beyond MaxSessions evict
// least-recently-used; sessions idle past IdleTTL expire on their own.
type Config struct {
	MaxSessions int
	IdleTTL     time.Duration
	Logger      *slog.Logger
}

func normalizeConfig(cfg Config) Config {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// =============================================================================
// Registry
// =============================================================================

// Registry owns the mapping from surface id to live session. Lookups and
// lifecycle are serialized by the registry lock; mutations of a given
// session serialize on the session's own lock, so interactions for
// different surfaces run fully in parallel.
type Registry struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
	logger   *slog.Logger
}

// NewRegistry creates a session registry.
func NewRegistry(cfg Config) *Registry {
	cfg = normalizeConfig(cfg)
	r := &Registry{logger: cfg.Logger}
	r.sessions = expirable.NewLRU[string, *Session](cfg.MaxSessions, r.onEvict, cfg.IdleTTL)
	return r
}

func (r *Registry) onEvict(surfaceID string, _ *Session) {
	r.logger.Debug("session evicted", "surface_id", surfaceID)
}

// Open creates the session for a surface, replacing any session the
// surface already had: a new render of the same surface supersedes the
// old working copy.
func (r *Registry) Open(surfaceID, documentID string, ns gateway.Namespace, doc document.Document) *Session {
	s := newSession(surfaceID, documentID, ns, doc)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions.Add(surfaceID, s)
	return s
}

// Get returns the live session for a surface and renews its idle TTL.
// An unknown surface yields ErrSessionExpired.
func (r *Registry) Get(surfaceID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions.Get(surfaceID)
	if !ok {
		return nil, ErrSessionExpired
	}
	r.sessions.Add(surfaceID, s)
	return s, nil
}

// Mutate applies fn to the surface's working copy, serialized against
// other mutations of the same surface, and returns the post-mutation
// snapshot for rendering and synchronization.
func (r *Registry) Mutate(surfaceID string, fn func(doc document.Document) error) (document.Document, error) {
	s, err := r.Get(surfaceID)
	if err != nil {
		return nil, err
	}
	return s.Mutate(fn)
}

// Close evicts the session for a surface. Not required for correctness;
// it bounds memory between TTL sweeps.
func (r *Registry) Close(surfaceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Remove(surfaceID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Len()
}
