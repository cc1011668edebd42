package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"surveyflow/internal/config"
)

const (
	uploadPartSize = 16 * 1024 * 1024
	presignExpiry  = 7 * 24 * time.Hour
)

// VideoStore persists question videos in a blob store
type VideoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type minioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewMinioClient connects to the S3-compatible endpoint
func NewMinioClient(cfg config.MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

// NewMinioStore creates a video store over an existing client
func NewMinioStore(client *minio.Client, cfg config.MinioConfig, logger *zap.Logger) VideoStore {
	return &minioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
		logger:        logger,
	}
}

// EnsureBucket creates the bucket on first start
func EnsureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// Upload streams the object in parts so large videos are not buffered whole
func (s *minioStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    uploadPartSize,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	s.logger.Info("Video uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)
	return s.url(ctx, key)
}

func (s *minioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *minioStore) url(ctx context.Context, key string) (string, error) {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key), nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}
