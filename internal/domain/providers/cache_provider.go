package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheProvider.Get for absent or expired keys.
// Implementations may wrap it with the key.
var ErrCacheMiss = errors.New("cache: key not found")

// CacheProvider is the shared byte store behind the active-list cache and
// the response flow sessions.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A ttl <= 0 keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete is a no-op for absent keys
	Delete(ctx context.Context, key string) error
}
