package runrepo

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/pkg/util"
)

// MemoryRepository is an in-memory run ledger for tests and local dev.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]chip.Run
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[uuid.UUID]chip.Run)}
}

func (r *MemoryRepository) Create(_ context.Context, run chip.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	run.Dates = slices.Clone(run.Dates)
	run.Outputs = slices.Clone(run.Outputs)
	r.data[run.ID] = run
	return nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status chip.RunStatus, failureReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.data[id]
	if !ok {
		return fmt.Errorf("run %s not found", id)
	}
	run.Status = status
	run.FailureReason = failureReason
	run.UpdatedAt = util.NowUTC()
	r.data[id] = run
	return nil
}

func (r *MemoryRepository) AppendOutput(_ context.Context, id uuid.UUID, output chip.Output) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.data[id]
	if !ok {
		return fmt.Errorf("run %s not found", id)
	}
	// Re-recording a date replaces it in place, matching the postgres upsert.
	if i := slices.IndexFunc(run.Outputs, func(o chip.Output) bool { return o.Date == output.Date }); i >= 0 {
		run.Outputs = slices.Clone(run.Outputs)
		run.Outputs[i] = output
	} else {
		run.Outputs = append(run.Outputs, output)
	}
	run.UpdatedAt = util.NowUTC()
	r.data[id] = run
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (chip.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.data[id]
	if !ok {
		return chip.Run{}, false, nil
	}
	run.Dates = slices.Clone(run.Dates)
	run.Outputs = slices.Clone(run.Outputs)
	return run, true, nil
}

var _ chip.RunRepository = (*MemoryRepository)(nil)
