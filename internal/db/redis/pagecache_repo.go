// Package redis stores rendered pages in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"SpaceTraveling/internal/core/pagecache"
)

const (
	defaultKeyPrefix = "spacetraveling:page:"
	scanBatch        = 100
)

type redisPageCacheRepo struct {
	client *redis.Client
	prefix string
}

// NewPageCacheRepository creates a Redis page cache repository. Every key is
// stored under prefix so Purge only touches this site's pages.
func NewPageCacheRepository(client *redis.Client, prefix string) pagecache.Repository {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisPageCacheRepo{client: client, prefix: prefix}
}

// NewClientWithURL creates a Redis client from a redis:// URL.
func NewClientWithURL(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (r *redisPageCacheRepo) Get(ctx context.Context, key string) (*pagecache.Entry, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page cache entry: %w", err)
	}

	var entry pagecache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page cache entry: %w", err)
	}
	return &entry, nil
}

func (r *redisPageCacheRepo) Set(ctx context.Context, entry *pagecache.Entry, retention time.Duration) error {
	if entry == nil || entry.Key == "" {
		return pagecache.ErrInvalidKey
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal page cache entry: %w", err)
	}

	if err := r.client.Set(ctx, r.prefix+entry.Key, raw, retention).Err(); err != nil {
		return fmt.Errorf("failed to set page cache entry: %w", err)
	}
	return nil
}

func (r *redisPageCacheRepo) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete page cache entry: %w", err)
	}
	return nil
}

func (r *redisPageCacheRepo) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan page cache: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to purge page cache: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
