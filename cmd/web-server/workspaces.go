package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/querycache"
	"github.com/protomem/taskdesk/internal/view"
)

// sessionState is what one browser session keeps in memory between requests.
type sessionState struct {
	cache     *querycache.Cache
	workspace *view.Workspace
}

// workspaceRegistry hands out per-session state. Entries fall out after ttl of
// disuse or when more than size sessions are active; they are rebuilt on demand.
type workspaceRegistry struct {
	logger  *slog.Logger
	backend view.Gateway

	mu      sync.Mutex
	entries *expirable.LRU[string, *sessionState]
}

func newWorkspaceRegistry(logger *slog.Logger, backend view.Gateway, size int, ttl time.Duration) *workspaceRegistry {
	if size <= 0 {
		size = 1024
	}

	logger = logger.With("module", "workspaces")
	onEvict := func(id string, st *sessionState) {
		st.cache.Clear()
		logger.Debug("session state evicted")
	}

	return &workspaceRegistry{
		logger:  logger,
		backend: backend,
		entries: expirable.NewLRU[string, *sessionState](size, onEvict, ttl),
	}
}

func (r *workspaceRegistry) Get(sess *model.Session) *sessionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.entries.Get(sess.ID); ok {
		return st
	}

	cache := querycache.New()
	st := &sessionState{
		cache:     cache,
		workspace: view.NewWorkspace(r.logger, r.backend, cache, sess.AccessToken),
	}
	r.entries.Add(sess.ID, st)
	return st
}

func (r *workspaceRegistry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Remove(id)
}
