package landcover

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func singleSegmentInputs() PixelInputs {
	return PixelInputs{
		Segments: []Segment{flatSegment("2000-01-01", "2010-01-01", "2010-01-01", 0)},
		Predictions: []Prediction{
			prediction("2000-01-01", "2005-07-01", vec(map[int]float64{idxGrass: 0.6, idxTree: 0.3})),
		},
	}
}

func TestLandcoverBeforeFirstSegment(t *testing.T) {
	cfg := DefaultConfig()
	pixel := pixelAt("1999-06-01", singleSegmentInputs())

	cfg.Fill.Begin = false
	require.Equal(t, cfg.Landcover.Insufficient, Landcover(cfg, pixel, 0))

	cfg.Fill.Begin = true
	require.Equal(t, codeGrass, Landcover(cfg, pixel, 0))
	require.Equal(t, codeTree, Landcover(cfg, pixel, 1))
}

func TestLandcoverAfterLastSegment(t *testing.T) {
	cfg := DefaultConfig()
	pixel := pixelAt("2011-01-01", singleSegmentInputs())

	cfg.Fill.End = false
	require.Equal(t, cfg.Landcover.Insufficient, Landcover(cfg, pixel, 0))

	cfg.Fill.End = true
	require.Equal(t, codeGrass, Landcover(cfg, pixel, 0))
}

func TestLandcoverIntersectingSegment(t *testing.T) {
	cfg := DefaultConfig()
	pixel := pixelAt("2005-01-01", singleSegmentInputs())

	got := landcoverDecision(cfg, pixel, 0)
	require.Equal(t, "intersects", got.rule)
	require.Equal(t, codeGrass, got.value)
	require.Equal(t, codeTree, Landcover(cfg, pixel, 1))
}

func TestLandcoverBetweenSegments(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		classA int
		classB int
		fill   FillPolicy
		rule   string
		want   func(Config) int
	}{
		{
			name: "same class fills gap", date: "2005-04-01", classA: idxGrass, classB: idxGrass,
			fill: FillPolicy{SameLC: true, DiffLC: true}, rule: "fill_samelc",
			want: func(Config) int { return codeGrass },
		},
		{
			name: "different class after break takes later segment", date: "2005-04-01", classA: idxGrass, classB: idxTree,
			fill: FillPolicy{SameLC: true, DiffLC: true}, rule: "fill_difflc_after_break",
			want: func(Config) int { return codeTree },
		},
		{
			name: "different class before break keeps earlier segment", date: "2005-02-01", classA: idxGrass, classB: idxTree,
			fill: FillPolicy{SameLC: true, DiffLC: true}, rule: "fill_difflc_before_break",
			want: func(Config) int { return codeGrass },
		},
		{
			name: "different class without difflc", date: "2005-04-01", classA: idxGrass, classB: idxTree,
			fill: FillPolicy{SameLC: true}, rule: "between",
			want: func(c Config) int { return c.Landcover.Between },
		},
		{
			name: "same class without fill", date: "2005-04-01", classA: idxGrass, classB: idxGrass,
			fill: FillPolicy{}, rule: "between",
			want: func(c Config) int { return c.Landcover.Between },
		},
		{
			name: "same class with only difflc", date: "2005-04-01", classA: idxGrass, classB: idxGrass,
			fill: FillPolicy{DiffLC: true}, rule: "fill_difflc_after_break",
			want: func(Config) int { return codeGrass },
		},
	}
	for _, tc := range tests {
		cfg := DefaultConfig()
		cfg.Fill = tc.fill
		pixel := pixelAt(tc.date, gapInputs(tc.classA, tc.classB))

		got := landcoverDecision(cfg, pixel, 0)
		require.Equal(t, tc.rule, got.rule, tc.name)
		require.Equal(t, tc.want(cfg), got.value, tc.name)
	}
}

func TestLandcoverWithoutSegments(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, cfg.Landcover.NoModel, Landcover(cfg, CharacterizedPixel{}, 0))
}

func TestAdjacentPairScansConsecutiveSegments(t *testing.T) {
	segs := []CharacterizedSegment{
		{Sday: 1, FollowsEday: true},
		{Sday: 2, FollowsEday: true},
		{Sday: 3, PrecedesSday: true},
		{Sday: 4, PrecedesSday: true},
	}
	a, b, ok := betweenEdaySday(segs)
	require.True(t, ok)
	require.Equal(t, 2, a.Sday)
	require.Equal(t, 3, b.Sday)

	_, _, ok = betweenEdaySday(segs[:2])
	require.False(t, ok)
}
