// Package pagecache keeps rendered pages and regenerates them on a timer:
// a page younger than the TTL is served as is, an older one is served once
// more while a fresh copy is rendered in the background.
package pagecache

import (
	"context"
	"errors"
	"time"
)

// Status says how a response was produced. It is sent as the X-Cache header.
type Status string

const (
	StatusHit    Status = "HIT"
	StatusStale  Status = "STALE"
	StatusMiss   Status = "MISS"
	StatusBypass Status = "BYPASS"
)

// HeaderName is the response header carrying the Status.
const HeaderName = "X-Cache"

// Entry is one rendered page.
type Entry struct {
	RenderedAt  time.Time `json:"rendered_at"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
}

// Age returns how long ago the page was rendered.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.RenderedAt)
}

// RenderFunc produces the body and content type of a page.
type RenderFunc func(ctx context.Context) (body []byte, contentType string, err error)

// ErrInvalidKey is returned for empty cache keys.
var ErrInvalidKey = errors.New("invalid page cache key")
