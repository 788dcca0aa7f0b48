package landcover

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBurnRatioFlatSegment(t *testing.T) {
	br, err := BurnRatio(flatSegment("2000-01-01", "2010-01-01", "2010-01-01", 0))
	require.NoError(t, err)
	require.Zero(t, br)
}

func TestBurnRatioGrowthAndDecline(t *testing.T) {
	// NBR moves between 1/3 (NIR 2000) and 1/2 (NIR 3000)
	br, err := BurnRatio(trendSegment("2000-01-01", "2010-01-01", "2010-01-01", 2000, 3000))
	require.NoError(t, err)
	require.InDelta(t, 1.0/6, br, 1e-9)

	br, err = BurnRatio(trendSegment("2000-01-01", "2010-01-01", "2010-01-01", 3000, 2000))
	require.NoError(t, err)
	require.InDelta(t, -1.0/6, br, 1e-9)
}

func TestBurnRatioZeroReflectance(t *testing.T) {
	_, err := BurnRatio(Segment{Sday: 730120, Eday: 733773})
	require.ErrorIs(t, err, ErrZeroReflectance)
}
