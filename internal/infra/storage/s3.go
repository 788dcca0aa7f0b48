package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
)

// S3Storage stores products in an S3 compatible bucket (AWS, Cloudflare R2, MinIO, Ceph).
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	// bucketMu guards bucketReady, which only ever flips to true after a successful check.
	bucketMu    sync.Mutex
	bucketReady bool
}

// NewS3Storage constructs the storage adapter. A scheme in endpoint overrides useSSL.
func NewS3Storage(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, logger *slog.Logger) (*S3Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lower := strings.ToLower(strings.TrimSpace(endpoint))
	switch {
	case strings.HasPrefix(lower, "https://"):
		useSSL = true
	case strings.HasPrefix(lower, "http://"):
		useSSL = false
	}
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Storage{client: client, bucket: bucket, logger: logger.With("component", "storage.s3")}, nil
}

func (s *S3Storage) ensureBucket(ctx context.Context) error {
	s.bucketMu.Lock()
	defer s.bucketMu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			err = nil
		}
		if err == nil {
			s.logger.Info("bucket created", "bucket", s.bucket)
		}
	}
	if err != nil {
		return fmt.Errorf("ensure bucket %s: %w", s.bucket, err)
	}
	s.bucketReady = true
	return nil
}

// Put uploads data.
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, mimeType string) (chip.StoredObject, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return chip.StoredObject{}, err
	}
	reader := bytes.NewReader(data)
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: len(data) < 5*1024*1024, // small uploads as single part
	})
	if err != nil {
		return chip.StoredObject{}, err
	}
	return chip.StoredObject{
		Key:      key,
		Size:     info.Size,
		MimeType: mimeType,
		ETag:     info.ETag,
	}, nil
}

// Get fetches an object for reading.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key before the reader is handed out.
	if _, statErr := obj.Stat(); statErr != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(statErr).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", key, chip.ErrObjectNotFound)
		}
		return nil, statErr
	}
	return obj, nil
}

var _ chip.ObjectStorage = (*S3Storage)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}
