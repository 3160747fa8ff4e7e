// Package app wires configuration into the content and caching services
// shared by the server and the static exporter.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"SpaceTraveling/internal/config"
	"SpaceTraveling/internal/content/filesource"
	"SpaceTraveling/internal/content/prismic"
	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/dates"
	"SpaceTraveling/internal/core/pagecache"
	"SpaceTraveling/internal/core/posts"
	"SpaceTraveling/internal/core/preview"
	"SpaceTraveling/internal/core/richtext"
	"SpaceTraveling/internal/db/migrations"
	"SpaceTraveling/internal/db/postgres"
	redisRepo "SpaceTraveling/internal/db/redis"
)

// Content bundles the content source with the services built on it.
type Content struct {
	Source  content.Source
	Posts   posts.Service
	Preview preview.Service
	// Files is set only for the fs backend, so callers can watch it.
	Files *filesource.Source
}

// NewContent builds the configured content source and the post and preview services.
func NewContent(cfg *config.Config, logger *slog.Logger) (*Content, error) {
	c := &Content{}

	switch cfg.Content.Backend {
	case config.BackendFS:
		files, err := filesource.New(cfg.Content.Dir,
			filesource.WithDocumentType(cfg.Content.DocumentType),
			filesource.WithPreviewToken(cfg.Content.PreviewToken),
			filesource.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load content directory: %w", err)
		}
		c.Source = files
		c.Files = files
	default:
		client, err := prismic.NewClient(prismic.Config{
			APIURL:            cfg.Content.APIURL,
			AccessToken:       cfg.Content.AccessToken,
			Timeout:           cfg.Content.Timeout,
			RefTTL:            cfg.Content.RefTTL,
			RequestsPerSecond: cfg.Content.RequestsPerSecond,
			Burst:             cfg.Content.Burst,
		}, prismic.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create prismic client: %w", err)
		}
		c.Source = client
	}

	dateFormatter, err := dates.NewFormatter(cfg.Locale.Tag, cfg.Locale.Timezone)
	if err != nil {
		return nil, err
	}

	var rendererOpts []richtext.RendererOption
	if cfg.Content.SanitizeHTML {
		rendererOpts = append(rendererOpts, richtext.WithSanitizer(richtext.NewSanitizer()))
	}
	formatter := posts.NewFormatter(dateFormatter, richtext.NewRenderer(rendererOpts...))

	c.Posts = posts.NewService(c.Source, formatter,
		posts.WithDocumentType(cfg.Content.DocumentType),
		posts.WithPageSize(cfg.Content.PageSize),
	)
	c.Preview = preview.NewService(c.Source)

	return c, nil
}

// NewPageCache builds the page cache on the configured backend. The returned
// close function releases the backend connection.
func NewPageCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pagecache.Service, func() error, error) {
	repo, closeFn, err := newPageCacheRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	service := pagecache.NewService(repo,
		pagecache.WithTTL(cfg.Cache.TTL),
		pagecache.WithRetention(cfg.Cache.Retention),
		pagecache.WithLogger(logger),
	)
	return service, closeFn, nil
}

func newPageCacheRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pagecache.Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Cache.Backend {
	case config.CachePostgres:
		db, err := sql.Open("postgres", cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := migrations.Up(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("page cache using postgres")
		return postgres.NewPageCacheRepository(db), db.Close, nil

	case config.CacheRedis:
		client, err := redisRepo.NewClientWithURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		logger.Info("page cache using redis")
		return redisRepo.NewPageCacheRepository(client, cfg.Cache.KeyPrefix), client.Close, nil

	default:
		repo, err := pagecache.NewMemoryRepository(cfg.Cache.Size)
		if err != nil {
			return nil, nil, err
		}
		return repo, noop, nil
	}
}
