package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
)

// GCSStorage stores products in a Google Cloud Storage bucket.
type GCSStorage struct {
	client *gcs.Client
	bucket string
	logger *slog.Logger
}

// NewGCSStorage builds a client from a service account key, or application default credentials
// when credentialsFile is empty. endpoint targets an emulator.
func NewGCSStorage(ctx context.Context, bucket, credentialsFile, endpoint string, logger *slog.Logger) (*GCSStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket, logger: logger.With("component", "storage.gcs")}, nil
}

// Put uploads data in a single request.
func (s *GCSStorage) Put(ctx context.Context, key string, data []byte, mimeType string) (chip.StoredObject, error) {
	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = mimeType
	writer.ChunkSize = 0
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return chip.StoredObject{}, fmt.Errorf("write gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := writer.Close(); err != nil {
		return chip.StoredObject{}, fmt.Errorf("close gs://%s/%s: %w", s.bucket, key, err)
	}
	attrs := writer.Attrs()
	return chip.StoredObject{
		Key:      key,
		Size:     attrs.Size,
		MimeType: attrs.ContentType,
		ETag:     attrs.Etag,
	}, nil
}

// Get opens the object for reading.
func (s *GCSStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", key, chip.ErrObjectNotFound)
		}
		return nil, err
	}
	return reader, nil
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

var _ chip.ObjectStorage = (*GCSStorage)(nil)
