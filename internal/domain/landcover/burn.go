package landcover

const (
	// GrowthThreshold is the burn ratio above which a segment is considered greening.
	GrowthThreshold = 0.05
	// DeclineThreshold is the burn ratio below which a segment is considered browning.
	DeclineThreshold = -0.05
)

// BurnRatio is NBR(eday) - NBR(sday), with each band evaluated from its intercept and first coefficient.
func BurnRatio(seg Segment) (float64, error) {
	start, err := normalizedBurnRatio(seg, seg.Sday)
	if err != nil {
		return 0, err
	}
	end, err := normalizedBurnRatio(seg, seg.Eday)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

func normalizedBurnRatio(seg Segment, day int) (float64, error) {
	d := float64(day)
	nir := seg.NirIntercept + d*seg.NirCoef
	swir := seg.SwirIntercept + d*seg.SwirCoef
	if nir+swir == 0 {
		return 0, ErrZeroReflectance
	}
	return (nir - swir) / (nir + swir), nil
}
