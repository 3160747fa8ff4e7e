package pagecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemorySize = 1000

type memoryItem struct {
	expiresAt time.Time
	entry     Entry
}

type memoryRepo struct {
	items *lru.Cache[string, memoryItem]
	now   func() time.Time
	mu    sync.Mutex
}

// NewMemoryRepository creates an in-process repository holding at most size pages.
func NewMemoryRepository(size int) (Repository, error) {
	if size <= 0 {
		size = defaultMemorySize
	}

	items, err := lru.New[string, memoryItem](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory page cache: %w", err)
	}

	return &memoryRepo{items: items, now: time.Now}, nil
}

func (r *memoryRepo) Get(ctx context.Context, key string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items.Get(key)
	if !ok {
		return nil, nil
	}
	if !r.now().Before(item.expiresAt) {
		r.items.Remove(key)
		return nil, nil
	}

	entry := item.entry
	return &entry, nil
}

func (r *memoryRepo) Set(ctx context.Context, entry *Entry, retention time.Duration) error {
	if entry == nil || entry.Key == "" {
		return ErrInvalidKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items.Add(entry.Key, memoryItem{entry: *entry, expiresAt: r.now().Add(retention)})
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, key string) error {
	r.items.Remove(key)
	return nil
}

func (r *memoryRepo) Purge(ctx context.Context) error {
	r.items.Purge()
	return nil
}
