package chip

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
)

// Source fetches the segments and predictions of a chip. Both must succeed for the fetch to succeed.
type Source interface {
	Fetch(ctx context.Context, cx, cy int64) (Inputs, error)
}

// ObjectStorage abstracts blob storage (memory, S3 compatible, GCS).
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// RunRepository persists the run ledger.
type RunRepository interface {
	Create(ctx context.Context, run Run) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status RunStatus, failureReason *string) error
	AppendOutput(ctx context.Context, id uuid.UUID, output Output) error
	Get(ctx context.Context, id uuid.UUID) (Run, bool, error)
}

// ErrObjectNotFound is returned by ObjectStorage.Get for missing keys.
var ErrObjectNotFound = errors.New("object not found")
