package storage

import (
	"context"
	"testing"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		useSSL   bool
		endpoint string
		secure   bool
	}{
		{raw: "https://s3.example.com", useSSL: false, endpoint: "s3.example.com", secure: true},
		{raw: "http://localhost:9000", useSSL: true, endpoint: "localhost:9000", secure: false},
		{raw: "minio:9000", useSSL: false, endpoint: "minio:9000", secure: false},
		{raw: "//minio:9000", useSSL: true, endpoint: "minio:9000", secure: true},
	}

	for _, tt := range tests {
		endpoint, secure := splitEndpoint(tt.raw, tt.useSSL)
		assert.Equal(t, tt.endpoint, endpoint, tt.raw)
		assert.Equal(t, tt.secure, secure, tt.raw)
	}
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", normalizePrefix(""))
	assert.Equal(t, "", normalizePrefix(" / "))
	assert.Equal(t, "reorder/", normalizePrefix("reorder"))
	assert.Equal(t, "reorder/exports/", normalizePrefix("/reorder/exports/"))
}

func TestNewMinioClient_ValidatesConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewMinioClient(ctx, config.StorageConfig{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewMinioClient(ctx, config.StorageConfig{Endpoint: "minio:9000"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewMinioClient(ctx, config.StorageConfig{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")
}
