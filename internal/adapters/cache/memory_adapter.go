package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/raksetu/bloodhub/internal/domain/providers"
)

// MemoryAdapter is an in-process CacheProvider used when Redis is not
// configured or unreachable.
type MemoryAdapter struct {
	store *gocache.Cache
}

// NewMemoryAdapter creates an in-memory cache that sweeps expired keys every
// cleanupInterval.
func NewMemoryAdapter(cleanupInterval time.Duration) providers.CacheProvider {
	return &MemoryAdapter{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := a.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("cache: unexpected value type for %s", key)
	}
	return data, nil
}

func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	expiration := gocache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	a.store.Set(key, buf, expiration)
	return nil
}

func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.store.Delete(key)
	return nil
}
