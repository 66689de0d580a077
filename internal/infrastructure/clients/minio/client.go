package minio

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/raksetu/bloodhub/pkg/config"
)

// Client wraps a MinIO client bound to one bucket
type Client struct {
	client *minio.Client
	cfg    config.StorageConfig
}

// NewClient creates the MinIO client and makes sure the bucket exists
func NewClient(ctx context.Context, cfg *config.StorageConfig) (*Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Client{client: cli, cfg: *cfg}, nil
}

// Client returns the underlying MinIO client
func (c *Client) Client() *minio.Client {
	return c.client
}

// Bucket returns the bucket objects are written to
func (c *Client) Bucket() string {
	return c.cfg.Bucket
}

// Config returns the storage configuration the client was built from
func (c *Client) Config() config.StorageConfig {
	return c.cfg
}
