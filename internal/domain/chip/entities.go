package chip

import (
	"time"

	"github.com/google/uuid"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
)

// RunStatus tracks generation progress of a chip request.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Inputs is everything the upstream service returned for one chip.
type Inputs struct {
	Segments    []landcover.RawSegment    `json:"segments"`
	Predictions []landcover.RawPrediction `json:"predictions"`
}

// PixelInputs are the raw records of a single pixel.
type PixelInputs struct {
	Px          int64
	Py          int64
	Segments    []landcover.RawSegment
	Predictions []landcover.RawPrediction
}

// Run is the ledger entry of one chip generation.
type Run struct {
	ID            uuid.UUID `json:"id"`
	Cx            int64     `json:"cx"`
	Cy            int64     `json:"cy"`
	Dates         []string  `json:"dates"`
	Status        RunStatus `json:"status"`
	FailureReason *string   `json:"failureReason,omitempty"`
	Outputs       []Output  `json:"outputs"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Output records one persisted date of a run.
type Output struct {
	Date    string `json:"date"`
	Key     string `json:"key"`
	Records int    `json:"records"`
	Size    int64  `json:"size"`
	ETag    string `json:"etag"`
}
