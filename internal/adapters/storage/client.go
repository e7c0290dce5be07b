package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// MinIOService implements StorageService using MinIO.
type MinIOService struct {
	client      *minio.Client
	maxFileSize int64
	publicBase  string
}

// NewMinIOService creates a new MinIO storage service.
func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOService{
		client:      client,
		maxFileSize: cfg.GetMinIOMaxFileSize(),
		publicBase:  strings.TrimRight(cfg.GetPublicAssetBaseURL(), "/"),
	}, nil
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (s *MinIOService) EnsureBucketExists(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	if err := s.client.SetBucketPolicy(ctx, bucket, fmt.Sprintf(publicReadPolicy, bucket)); err != nil {
		return fmt.Errorf("failed to set public read policy on %s: %w", bucket, err)
	}
	return nil
}

// UploadFile uploads a file directly to storage and returns the file key.
// Keys are a fresh UUID plus the original extension, so uploads never overwrite.
func (s *MinIOService) UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	fileKey := filepath.ToSlash(filepath.Join(folder, uniqueName(fileName)))

	_, err := s.client.PutObject(ctx, bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}
	return fileKey, nil
}

// DeleteObject removes an object from storage.
func (s *MinIOService) DeleteObject(ctx context.Context, bucket, fileKey string) error {
	err := s.client.RemoveObject(ctx, bucket, fileKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", fileKey, err)
	}
	return nil
}

// ListObjects walks the bucket recursively.
func (s *MinIOService) ListObjects(ctx context.Context, bucket string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, obj.Err)
		}
		objects = append(objects, ObjectInfo{Key: obj.Key, LastModified: obj.LastModified})
	}
	return objects, nil
}

// PublicURL joins the public base, bucket and key.
func (s *MinIOService) PublicURL(bucket, fileKey string) string {
	return publicURL(s.publicBase, bucket, fileKey)
}

// KeyFromPublicURL strips the public base and bucket prefix.
func (s *MinIOService) KeyFromPublicURL(bucket, url string) (string, bool) {
	return keyFromPublicURL(s.publicBase, bucket, url)
}

// GetMaxFileSize returns the configured maximum file size in bytes.
func (s *MinIOService) GetMaxFileSize() int64 {
	return s.maxFileSize
}

func uniqueName(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return uuid.New().String() + ext
}

func publicURL(base, bucket, fileKey string) string {
	return base + "/" + bucket + "/" + strings.TrimLeft(fileKey, "/")
}

func keyFromPublicURL(base, bucket, url string) (string, bool) {
	prefix := base + "/" + bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

var _ StorageService = (*MinIOService)(nil)
