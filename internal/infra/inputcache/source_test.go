package inputcache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
)

type countingSource struct {
	inputs chip.Inputs
	err    error
	calls  int
}

func (s *countingSource) Fetch(context.Context, int64, int64) (chip.Inputs, error) {
	s.calls++
	return s.inputs, s.err
}

func sampleInputs() chip.Inputs {
	return chip.Inputs{
		Segments: []landcover.RawSegment{{
			Px: 1, Py: 2, Sday: "2000-01-01", Eday: "2005-01-01", Bday: "2005-01-01",
			Chprob: 0.4, Niint: 2000, Nicoef: []float64{0.1}, S1int: 1000, S1coef: []float64{0.2},
		}},
		Predictions: []landcover.RawPrediction{{
			Px: 1, Py: 2, Sday: "2000-01-01", Date: "2003-07-01", Prob: []float64{0.2, 0.8},
		}},
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedSourceServesRepeatFetchesFromStore(t *testing.T) {
	upstream := &countingSource{inputs: sampleInputs()}
	source := NewCachedSource(upstream, NewMemoryStore(), time.Hour, discard())

	first, err := source.Fetch(context.Background(), 10, 20)
	require.NoError(t, err)
	second, err := source.Fetch(context.Background(), 10, 20)
	require.NoError(t, err)

	require.Equal(t, 1, upstream.calls)
	require.Equal(t, sampleInputs(), first)
	require.Equal(t, first, second)

	_, err = source.Fetch(context.Background(), 11, 20)
	require.NoError(t, err)
	require.Equal(t, 2, upstream.calls)
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	upstream := &countingSource{err: errors.New("segments request error: status=500")}
	store := NewMemoryStore()
	source := NewCachedSource(upstream, store, time.Hour, discard())

	_, err := source.Fetch(context.Background(), 1, 1)
	require.Error(t, err)
	_, found, err := store.Get(context.Background(), 1, 1)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), 1, 2, sampleInputs(), time.Minute))
	_, found, err := store.Get(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, err = store.Get(context.Background(), 1, 2)
	require.NoError(t, err)
	require.False(t, found)
}

func TestCodecKeepsWireFieldNames(t *testing.T) {
	payload, err := encode(sampleInputs())
	require.NoError(t, err)
	require.Contains(t, string(payload), "nicoef")

	decoded, err := decode(payload)
	require.NoError(t, err)
	require.Equal(t, sampleInputs(), decoded)
}

func TestChipKey(t *testing.T) {
	require.Equal(t, "gaia:inputs:-585:2805", chipKey("gaia:inputs", -585, 2805))
}
