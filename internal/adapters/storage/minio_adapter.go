package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/providers"
	minioclient "github.com/raksetu/bloodhub/internal/infrastructure/clients/minio"
	"github.com/raksetu/bloodhub/pkg/config"
)

// MinioAdapter implements ObjectStorage on a MinIO / S3 compatible bucket
type MinioAdapter struct {
	client *minioclient.Client
}

// NewMinioAdapter creates a new object storage adapter
func NewMinioAdapter(client *minioclient.Client) providers.ObjectStorage {
	return &MinioAdapter{client: client}
}

// Put uploads the object and returns its public URL
func (a *MinioAdapter) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("object key is empty")
	}

	info, err := a.client.Client().PutObject(ctx, a.client.Bucket(), key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Debug().Str("bucket", info.Bucket).Str("key", info.Key).Int64("size", info.Size).Msg("Uploaded object")
	return PublicURL(a.client.Config(), key), nil
}

// PublicURL builds the download URL for key. PublicBase wins when set,
// otherwise the URL points at the bucket on the storage endpoint.
func PublicURL(cfg config.StorageConfig, key string) string {
	escaped := escapeKey(key)
	if cfg.PublicBase != "" {
		return strings.TrimRight(cfg.PublicBase, "/") + "/" + escaped
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.Endpoint, cfg.Bucket, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Disabled rejects every upload. It stands in when no bucket is configured.
type Disabled struct{}

// Put always fails
func (Disabled) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", fmt.Errorf("object storage is not configured")
}
