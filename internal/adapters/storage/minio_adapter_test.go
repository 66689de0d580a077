package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raksetu/bloodhub/pkg/config"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		key  string
		want string
	}{
		{
			name: "endpoint and bucket",
			cfg:  config.StorageConfig{Endpoint: "localhost:9000", Bucket: "bloodhub"},
			key:  "profileImages/u1/profile_1700000000000_photo.jpg",
			want: "http://localhost:9000/bloodhub/profileImages/u1/profile_1700000000000_photo.jpg",
		},
		{
			name: "ssl endpoint",
			cfg:  config.StorageConfig{Endpoint: "s3.example.com", Bucket: "b", UseSSL: true},
			key:  "/a.png",
			want: "https://s3.example.com/b/a.png",
		},
		{
			name: "public base with escaping",
			cfg:  config.StorageConfig{PublicBase: "https://cdn.example.com/", Bucket: "b"},
			key:  "profileImages/u1/my photo.jpg",
			want: "https://cdn.example.com/profileImages/u1/my%20photo.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicURL(tt.cfg, tt.key))
		})
	}
}

func TestDisabled_Put(t *testing.T) {
	url, err := Disabled{}.Put(context.Background(), "profileImages/u1/a.png", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)
	assert.Empty(t, url)
}
