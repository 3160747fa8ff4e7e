package pagecache

import (
	"context"
	"time"
)

// Repository defines the interface for rendered page persistence
type Repository interface {
	// Get retrieves a cached page by key.
	// Returns nil, nil if not found or past retention (not an error condition).
	// Returns error only on storage failures.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores a page, replacing any entry under the same key.
	// The backend may drop the entry once retention has elapsed.
	Set(ctx context.Context, entry *Entry, retention time.Duration) error

	// Delete removes one page.
	Delete(ctx context.Context, key string) error

	// Purge removes every page.
	Purge(ctx context.Context) error
}

// Service serves pages from the cache and regenerates them when they age out.
type Service interface {
	// Serve returns the page under key, rendering it with render when the cache
	// has nothing usable. Stale pages are returned as is and regenerated in the
	// background.
	Serve(ctx context.Context, key string, render RenderFunc) (*Entry, Status, error)

	// Invalidate drops every cached page.
	Invalidate(ctx context.Context) error

	// Wait blocks until background regenerations have finished.
	Wait()
}
