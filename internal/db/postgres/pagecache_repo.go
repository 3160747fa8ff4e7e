package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"SpaceTraveling/internal/core/pagecache"
)

type postgresPageCacheRepo struct {
	db *sql.DB
}

// NewPageCacheRepository creates a new PostgreSQL page cache repository
func NewPageCacheRepository(db *sql.DB) pagecache.Repository {
	return &postgresPageCacheRepo{db: db}
}

// Get retrieves a cached page by key.
// Returns nil, nil if not found or past retention (not an error condition).
func (r *postgresPageCacheRepo) Get(ctx context.Context, key string) (*pagecache.Entry, error) {
	query := `
		SELECT content_type, body, rendered_at
		FROM page_cache
		WHERE key = $1 AND expires_at > NOW()
	`

	entry := &pagecache.Entry{Key: key}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&entry.ContentType, &entry.Body, &entry.RenderedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page cache entry: %w", err)
	}

	return entry, nil
}

// Set stores a page, replacing any previous render under the same key.
// The expires_at is calculated as NOW() + retention.
func (r *postgresPageCacheRepo) Set(ctx context.Context, entry *pagecache.Entry, retention time.Duration) error {
	if entry == nil || entry.Key == "" {
		return pagecache.ErrInvalidKey
	}

	query := `
		INSERT INTO page_cache (key, content_type, body, rendered_at, expires_at)
		VALUES ($1, $2, $3, $4, NOW() + $5::interval)
		ON CONFLICT (key) DO UPDATE
		SET content_type = EXCLUDED.content_type,
		    body = EXCLUDED.body,
		    rendered_at = EXCLUDED.rendered_at,
		    expires_at = EXCLUDED.expires_at
	`

	_, err := r.db.ExecContext(ctx, query, entry.Key, entry.ContentType, entry.Body, entry.RenderedAt.UTC(), formatInterval(retention))
	if err != nil {
		return fmt.Errorf("failed to insert/update page cache entry: %w", err)
	}

	return nil
}

// Delete removes one page.
func (r *postgresPageCacheRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM page_cache WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete page cache entry: %w", err)
	}
	return nil
}

// Purge removes every page.
func (r *postgresPageCacheRepo) Purge(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM page_cache`); err != nil {
		return fmt.Errorf("failed to purge page cache: %w", err)
	}
	return nil
}

// formatInterval converts a Go duration to a PostgreSQL interval string
func formatInterval(d time.Duration) string {
	seconds := int64(d.Seconds())

	switch {
	case seconds >= 86400 && seconds%86400 == 0:
		return fmt.Sprintf("%d days", seconds/86400)
	case seconds >= 3600 && seconds%3600 == 0:
		return fmt.Sprintf("%d hours", seconds/3600)
	case seconds >= 60 && seconds%60 == 0:
		return fmt.Sprintf("%d minutes", seconds/60)
	default:
		return fmt.Sprintf("%d seconds", seconds)
	}
}
