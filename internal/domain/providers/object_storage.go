package providers

import (
	"context"
	"io"
)

// ObjectStorage stores uploaded assets such as profile photos
type ObjectStorage interface {
	// Put writes size bytes from r under key and returns a durable download URL.
	// size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
