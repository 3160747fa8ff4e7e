// Package pagination holds the append-only "load more" state of the listing page.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"SpaceTraveling/internal/core/posts"
)

// State is the lifecycle state of a Controller.
type State int

const (
	// Idle means more pages exist and no request is running.
	Idle State = iota
	// Loading means a request for the next page is in flight.
	Loading
	// Exhausted means there is no next page. Terminal.
	Exhausted
	// Failed means the last request failed. Summaries and cursor are unchanged
	// and the visitor may try again.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrLoadInProgress is returned when LoadMore is called while a request is running.
var ErrLoadInProgress = errors.New("load already in progress")

// PageFetcher fetches the listing page identified by cursor.
type PageFetcher func(ctx context.Context, cursor string) (*posts.Listing, error)

// Snapshot is a point-in-time copy of a controller's state.
type Snapshot struct {
	Err       error
	Cursor    string
	Summaries []posts.Summary
	State     State
}

// HasMore reports whether the "load more" control should be shown.
func (s Snapshot) HasMore() bool {
	return s.Cursor != ""
}

// Controller accumulates listing pages. Summaries are only ever appended.
type Controller struct {
	fetch     PageFetcher
	lastErr   error
	cursor    string
	summaries []posts.Summary
	state     State
	mu        sync.Mutex
}

// New creates a controller that loads pages through fetch.
func New(fetch PageFetcher) *Controller {
	return &Controller{
		fetch: fetch,
		state: Exhausted,
	}
}

// Initialize replaces the state with the first page.
func (c *Controller) Initialize(batch []posts.Summary, cursor string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summaries = append([]posts.Summary(nil), batch...)
	c.cursor = cursor
	c.lastErr = nil
	c.state = stateFor(cursor)
}

// LoadMore fetches the page after the current cursor and appends it.
// It does nothing once the listing is exhausted, and returns ErrLoadInProgress
// without touching state while another call is loading. On failure the
// summaries and cursor are left as they were and the error is returned.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Exhausted:
		c.mu.Unlock()
		return nil
	case Loading:
		c.mu.Unlock()
		return ErrLoadInProgress
	}
	cursor := c.cursor
	c.state = Loading
	c.mu.Unlock()

	listing, err := c.fetch(ctx, cursor)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.lastErr = err
		c.state = Failed
		return err
	}

	c.summaries = append(c.summaries, listing.Results...)
	c.cursor = listing.NextPage
	c.lastErr = nil
	c.state = stateFor(c.cursor)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Summaries: append([]posts.Summary(nil), c.summaries...),
		Cursor:    c.cursor,
		State:     c.state,
		Err:       c.lastErr,
	}
}

func stateFor(cursor string) State {
	if cursor == "" {
		return Exhausted
	}
	return Idle
}
