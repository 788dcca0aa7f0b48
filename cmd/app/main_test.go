package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/config"
)

type stubGenerator struct {
	got    chip.Request
	result chip.Result
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, req chip.Request) (chip.Result, error) {
	s.got = req
	return s.result, s.err
}

func TestGenerateCmd_PrintsResult(t *testing.T) {
	runID := uuid.New()
	stub := &stubGenerator{result: chip.Result{RunID: runID, Cx: -585, Cy: 2805}}
	cleaned := false
	cmd := newGenerateCmd(func() (generator, func(), error) {
		return stub, func() { cleaned = true }, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--cx", "-585", "--cy", "2805", "--date", "2001-07-01", "--year", "2002", "--year", "2003"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.True(t, cleaned)
	require.Equal(t, chip.Request{Cx: -585, Cy: 2805, Dates: []string{"2001-07-01"}, Years: []int{2002, 2003}}, stub.got)

	var printed chip.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	require.Equal(t, runID, printed.RunID)
}

func TestGenerateCmd_PropagatesErrors(t *testing.T) {
	stub := &stubGenerator{err: errors.New("fetch failed")}
	cmd := newGenerateCmd(func() (generator, func(), error) { return stub, func() {}, nil })
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--cx", "1", "--cy", "2", "--year", "2001"})
	require.EqualError(t, cmd.ExecuteContext(context.Background()), "fetch failed")

	cmd = newGenerateCmd(func() (generator, func(), error) { return nil, nil, errors.New("bad config") })
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--cx", "1", "--cy", "2"})
	require.ErrorContains(t, cmd.ExecuteContext(context.Background()), "bad config")
}

func TestProvideLandcoverConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Classification.Classes = []string{"grass", "tree"}
	cfg.Classification.ClassCodes = map[string]int{"none": 0, "grass": 3, "tree": 4}
	cfg.Classification.NoneClass = "none"
	cfg.Classification.GrassClass = "grass"
	cfg.Classification.TreeClass = "tree"
	cfg.Classification.Landcover.Between = 10

	lc, err := provideLandcoverConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"grass", "tree"}, lc.Classes)
	require.Equal(t, 10, lc.Landcover.Between)

	cfg.Classification.TreeClass = "forest"
	_, err = provideLandcoverConfig(cfg)
	require.Error(t, err)
}

func TestProvideChipConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Chip.Format = "msgpack"
	cfg.Chip.Retry.MaxAttempts = 3
	got, err := provideChipConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, chip.FormatMsgpack, got.Format)
	require.Equal(t, 3, got.Retry.MaxAttempts)

	cfg.Chip.Format = "xml"
	_, err = provideChipConfig(cfg)
	require.Error(t, err)
}

func TestProvideObjectStorage_Memory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Backend = "memory"
	store, cleanup, err := provideObjectStorage(cfg, testLogger())
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, store)

	cfg.Storage.Backend = "tape"
	_, _, err = provideObjectStorage(cfg, testLogger())
	require.Error(t, err)
}

func TestProvideRunRepository_FallsBackToMemory(t *testing.T) {
	repo, cleanup := provideRunRepository(&config.Config{}, testLogger())
	defer cleanup()
	require.NotNil(t, repo)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideTracerProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telemetry.ServiceName = "gaia"
	cfg.Telemetry.TraceExporter = "none"
	tp, cleanup, err := provideTracerProvider(cfg, testLogger())
	require.NoError(t, err)
	defer cleanup()
	_, span := tp.Tracer("test").Start(context.Background(), "check")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	cfg.Telemetry.TraceExporter = "zipkin"
	_, _, err = provideTracerProvider(cfg, testLogger())
	require.Error(t, err)
}
