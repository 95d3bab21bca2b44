package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dataroom/internal/domain"
	"dataroom/internal/domain/repositories"
)

// MinIOConfig holds connection settings for an S3 compatible store
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIOStore keeps blobs as objects in one bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

var _ repositories.BlobStore = (*MinIOStore)(nil)

// ConnectMinIO creates the client and makes sure the bucket exists
func ConnectMinIO(ctx context.Context, cfg MinIOConfig, logger *slog.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if err := initBucket(ctx, client, cfg.Bucket, logger); err != nil {
		return nil, err
	}

	logger.Info("minio blob store ready", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &MinIOStore{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

func initBucket(ctx context.Context, client *minio.Client, bucket string, logger *slog.Logger) error {
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
	logger.Info("bucket created", "bucket", bucket)
	return nil
}

// Save uploads data under a fresh key
func (s *MinIOStore) Save(ctx context.Context, data []byte, ownerID, dataroomID, filename string) (string, error) {
	key := NewKey(ownerID, dataroomID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimetype.Detect(data).String(),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

// Open streams the object. GetObject is lazy, so Stat runs first to surface
// a missing key as not found.
func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return obj, nil
}

// Delete removes the object. S3 treats missing keys as deleted.
func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
