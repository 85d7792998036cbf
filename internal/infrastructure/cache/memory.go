package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"storefront/pkg/cache"
)

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache backs cache.CacheService with go-cache. Entries set with a
// zero ttl use defaultExpiration; expired entries are swept every
// cleanupInterval, which is also when eviction callbacks fire for them.
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) cache.CacheService {
	return &memoryCache{
		store: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *memoryCache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value any, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
}

func (c *memoryCache) Delete(key string) {
	c.store.Delete(key)
}

// Len counts held entries, including expired ones not yet swept.
func (c *memoryCache) Len() int {
	return c.store.ItemCount()
}

func (c *memoryCache) Flush() {
	c.store.Flush()
}

func (c *memoryCache) OnEvicted(fn func(key string, value any)) {
	c.store.OnEvicted(func(k string, v interface{}) {
		fn(k, v)
	})
}
