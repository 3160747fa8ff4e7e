package pagecache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"SpaceTraveling/internal/metrics"
)

const (
	// DefaultTTL is how long a rendered page is served without regeneration.
	DefaultTTL = 30 * time.Minute

	defaultRetention     = 24 * time.Hour
	defaultRenderTimeout = 30 * time.Second
	renderModeForeground = "foreground"
	renderModeBackground = "background"
)

type service struct {
	repo          Repository
	logger        *slog.Logger
	now           func() time.Time
	group         singleflight.Group
	wg            sync.WaitGroup
	pending       map[string]struct{}
	pendingMu     sync.Mutex
	ttl           time.Duration
	retention     time.Duration
	renderTimeout time.Duration
}

// ServiceOption configures the service
type ServiceOption func(*service)

// WithTTL sets how long a page counts as fresh.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.ttl = ttl
	}
}

// WithRetention sets how long the backend keeps a page at all.
// Stale pages can only be served while they are retained.
func WithRetention(retention time.Duration) ServiceOption {
	return func(s *service) {
		s.retention = retention
	}
}

// WithRenderTimeout bounds background regeneration.
func WithRenderTimeout(timeout time.Duration) ServiceOption {
	return func(s *service) {
		s.renderTimeout = timeout
	}
}

// WithLogger sets the logger used for background failures.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a page cache service on top of repo.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:          repo,
		pending:       make(map[string]struct{}),
		logger:        slog.Default(),
		now:           time.Now,
		ttl:           DefaultTTL,
		retention:     defaultRetention,
		renderTimeout: defaultRenderTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.retention < s.ttl {
		s.retention = s.ttl
	}
	return s
}

// Serve implements Service.
func (s *service) Serve(ctx context.Context, key string, render RenderFunc) (*Entry, Status, error) {
	if key == "" {
		return nil, "", ErrInvalidKey
	}

	cached, err := s.repo.Get(ctx, key)
	if err != nil {
		// Read failures fall through to rendering.
		s.logger.WarnContext(ctx, "page cache read failed", "key", key, "error", err)
		cached = nil
	}

	if cached != nil {
		if cached.Age(s.now()) < s.ttl {
			metrics.RecordCacheLookup(string(StatusHit))
			return cached, StatusHit, nil
		}

		s.regenerateAsync(ctx, key, render)
		metrics.RecordCacheLookup(string(StatusStale))
		return cached, StatusStale, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.renderAndStore(ctx, key, render, renderModeForeground)
	})
	if err != nil {
		return nil, "", err
	}

	metrics.RecordCacheLookup(string(StatusMiss))
	return v.(*Entry), StatusMiss, nil
}

// Invalidate implements Service.
func (s *service) Invalidate(ctx context.Context) error {
	if err := s.repo.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge page cache: %w", err)
	}
	return nil
}

// Wait implements Service.
func (s *service) Wait() {
	s.wg.Wait()
}

// regenerateAsync starts at most one background render per key.
func (s *service) regenerateAsync(ctx context.Context, key string, render RenderFunc) {
	s.pendingMu.Lock()
	if _, running := s.pending[key]; running {
		s.pendingMu.Unlock()
		return
	}
	s.pending[key] = struct{}{}
	s.pendingMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.pendingMu.Lock()
			delete(s.pending, key)
			s.pendingMu.Unlock()
		}()

		// The request that noticed the stale page may end before rendering does.
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.renderTimeout)
		defer cancel()

		_, err, shared := s.group.Do(key, func() (interface{}, error) {
			return s.renderAndStore(bgCtx, key, render, renderModeBackground)
		})
		if err != nil && !shared {
			s.logger.WarnContext(bgCtx, "background page regeneration failed, keeping stale page",
				"key", key, "error", err)
		}
	}()
}

func (s *service) renderAndStore(ctx context.Context, key string, render RenderFunc, mode string) (*Entry, error) {
	start := s.now()
	body, contentType, err := render(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordRender(mode, s.now().Sub(start).Seconds())

	entry := &Entry{
		Key:         key,
		Body:        body,
		ContentType: contentType,
		RenderedAt:  s.now(),
	}

	if err := s.repo.Set(ctx, entry, s.retention); err != nil {
		s.logger.WarnContext(ctx, "page cache write failed", "key", key, "error", err)
	}
	return entry, nil
}
