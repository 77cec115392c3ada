package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryCleanupInterval is how often expired grants are evicted even if never read again.
const memoryCleanupInterval = 5 * time.Minute

// MemoryCache is the single-process fallback used when Redis is not configured.
type MemoryCache struct {
	items *gocache.Cache
}

func NewMemoryCache() *MemoryCache {
	return newMemoryCache(memoryCleanupInterval)
}

func newMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok := m.items.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := value.([]byte)
	return data, ok
}

// Set stores data for ttl; a non-positive ttl keeps the entry until it is deleted.
func (m *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, data, ttl)
}

func (m *MemoryCache) Delete(ctx context.Context, key string) {
	m.items.Delete(key)
}
