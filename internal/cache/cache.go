// Package cache provides the cache-aside store used in front of read-heavy
// Soundtrack API calls. Entries carry no TTL: staleness is managed by the
// caller's skipCache decision, not by the cache itself.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache is a flat key-value store of serialized responses. Get returns
// ("", false, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type memoryEntry struct {
	value string
	at    time.Time
}

// MemoryCache is the in-process implementation, used when no shared backend
// is configured.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		log.Debug().Str("key", key).Msg("No cache entry found")
		return "", false, nil
	}
	log.Debug().Str("key", key).Msg("Found cached entry")
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	log.Debug().Str("key", key).Msg("Setting cache entry")
	c.mu.Lock()
	c.data[key] = memoryEntry{value: value, at: time.Now()}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	log.Debug().Str("key", key).Msg("Deleting cache entry")
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.data = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Count(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.data)), nil
}
