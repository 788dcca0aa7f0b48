package chip

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	inputs Inputs
	err    error
	calls  int
}

func (f *fakeSource) Fetch(context.Context, int64, int64) (Inputs, error) {
	f.calls++
	return f.inputs, f.err
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	// failures are returned by successive Put calls before writes start succeeding
	failures []error
	puts     int
}

func newFakeStorage(failures ...error) *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, failures: failures}
}

func (f *fakeStorage) Put(_ context.Context, key string, data []byte, mimeType string) (StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return StoredObject{}, err
	}
	f.objects[key] = append([]byte(nil), data...)
	return StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType, ETag: "etag-" + key}, nil
}

func (f *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeRuns struct {
	mu   sync.Mutex
	runs map[uuid.UUID]Run
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{runs: map[uuid.UUID]Run{}}
}

func (f *fakeRuns) Create(_ context.Context, run Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRuns) UpdateStatus(_ context.Context, id uuid.UUID, status RunStatus, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return errors.New("unknown run")
	}
	run.Status = status
	run.FailureReason = reason
	f.runs[id] = run
	return nil
}

func (f *fakeRuns) AppendOutput(_ context.Context, id uuid.UUID, output Output) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run := f.runs[id]
	run.Outputs = append(run.Outputs, output)
	f.runs[id] = run
	return nil
}

func (f *fakeRuns) Get(_ context.Context, id uuid.UUID) (Run, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	return run, ok, nil
}

func (f *fakeRuns) only() Run {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.runs {
		return run
	}
	return Run{}
}

// probs builds an eight class vector; classes are developed, cropland, grass, tree, ...
func probs(values map[int]float64) []float64 {
	out := make([]float64, 8)
	for i, v := range values {
		out[i] = v
	}
	return out
}

const (
	grassIdx = 2
	treeIdx  = 3
)

func segment(px, py int64, sday, eday string) landcover.RawSegment {
	return landcover.RawSegment{
		Px: px, Py: py,
		Sday: sday, Eday: eday, Bday: eday,
		Niint: 2000, Nicoef: []float64{0},
		S1int: 1000, S1coef: []float64{0},
	}
}

// grassToTree is one pixel that was grass until mid 2005 and tree afterwards.
func grassToTree(px, py int64) ([]landcover.RawSegment, []landcover.RawPrediction) {
	return []landcover.RawSegment{
			segment(px, py, "2000-01-01", "2005-06-30"),
			segment(px, py, "2005-07-01", "2015-01-01"),
		}, []landcover.RawPrediction{
			{Px: px, Py: py, Sday: "2000-01-01", Date: "2003-07-01", Prob: probs(map[int]float64{grassIdx: 0.8, treeIdx: 0.1})},
			{Px: px, Py: py, Sday: "2005-07-01", Date: "2008-07-01", Prob: probs(map[int]float64{treeIdx: 0.9, grassIdx: 0.1})},
		}
}

func newTestService(cfg Config, source Source, storage ObjectStorage, runs RunRepository) *Service {
	engine := landcover.NewEngine(landcover.DefaultConfig(), testLogger())
	svc := NewService(cfg, engine, source, storage, runs, nil, testLogger())
	svc.sleep = func(context.Context, time.Duration) error { return nil }
	return svc
}
