package cache

import "time"

// CacheService is a process-local key/value cache with per-entry expiry.
type CacheService interface {
	// Get returns the value and true, or nil and false when absent or expired.
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Len() int
	Flush()
	// OnEvicted registers fn for entries that expire or are deleted.
	// Only one callback is kept.
	OnEvicted(fn func(key string, value any))
}

// Lookup returns the cached value for key if it holds a T.
func Lookup[T any](c CacheService, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOrLoad returns the cached T for key, calling load on a miss and caching
// its result for ttl. Load errors are returned and not cached.
func GetOrLoad[T any](c CacheService, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, ok := Lookup[T](c, key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v, ttl)
	return v, nil
}
