package pagination

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultRegistrySize = 10000

// Registry keeps one Controller per visitor session. The least recently used
// sessions are evicted once the registry is full.
type Registry struct {
	controllers *lru.Cache[string, *Controller]
}

// NewRegistry creates a registry holding at most size sessions.
func NewRegistry(size int) (*Registry, error) {
	if size <= 0 {
		size = defaultRegistrySize
	}

	cache, err := lru.New[string, *Controller](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create pagination registry: %w", err)
	}

	return &Registry{controllers: cache}, nil
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.New().String()
}

// Get returns the controller for a session, if any.
func (r *Registry) Get(sessionID string) (*Controller, bool) {
	if sessionID == "" {
		return nil, false
	}
	return r.controllers.Get(sessionID)
}

// Put stores the controller for a session, replacing any previous one.
func (r *Registry) Put(sessionID string, c *Controller) {
	r.controllers.Add(sessionID, c)
}

// Discard drops a session's controller.
func (r *Registry) Discard(sessionID string) {
	if sessionID == "" {
		return
	}
	r.controllers.Remove(sessionID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.controllers.Len()
}
