// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// StorageService defines the interface for object storage operations.
type StorageService interface {
	// UploadFile uploads a file from an io.Reader under a collision-free key.
	// Returns the full file key used for storage.
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// DeleteObject removes an object from storage. Missing objects are not an error.
	DeleteObject(ctx context.Context, bucket, fileKey string) error

	// ListObjects returns every object in the bucket.
	ListObjects(ctx context.Context, bucket string) ([]ObjectInfo, error)

	// EnsureBucketExists creates the bucket if it doesn't exist and allows
	// anonymous reads so public URLs resolve.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// PublicURL returns the stable public URL of an object.
	PublicURL(bucket, fileKey string) string

	// KeyFromPublicURL reverses PublicURL. ok is false for URLs outside the bucket.
	KeyFromPublicURL(bucket, publicURL string) (string, bool)

	// ValidateContentType checks if the content type is allowed.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks if the file size is within limits.
	ValidateFileSize(sizeBytes int64) error

	// GetMaxFileSize returns the configured maximum file size in bytes.
	GetMaxFileSize() int64
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetPublicAssetBaseURL() string
	IsMinIOEnabled() bool
}
