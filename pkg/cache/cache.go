package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// noopCache is used when no cache backend is configured: every read misses
// and writes are discarded.
type noopCache struct{}

// Noop returns a disabled cache.
func Noop() Cache {
	return noopCache{}
}

func (noopCache) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (noopCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error { return nil }
