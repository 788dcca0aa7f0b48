package landcover

import "sort"

// Characterize evaluates one segment against the query date.
func Characterize(cfg Config, seg Segment, date int, predictions []Prediction) (CharacterizedSegment, error) {
	br, err := BurnRatio(seg)
	if err != nil {
		return CharacterizedSegment{}, err
	}
	local := segmentPredictions(seg.Sday, predictions)
	return CharacterizedSegment{
		Sday:         seg.Sday,
		Eday:         seg.Eday,
		Bday:         seg.Bday,
		Chprob:       seg.Chprob,
		Intersects:   seg.Sday <= date && date <= seg.Eday,
		PrecedesSday: date < seg.Sday,
		FollowsEday:  date > seg.Eday,
		FollowsBday:  date > seg.Bday,
		BtwEdayBday:  seg.Eday <= date && date <= seg.Bday,
		BurnRatio:    br,
		Growth:       br > GrowthThreshold,
		Decline:      br < DeclineThreshold,
		Predictions:  local,
		Primary:      Classify(cfg, local, date, 0, br),
		Secondary:    Classify(cfg, local, date, 1, br),
	}, nil
}

// CharacterizePixel evaluates every segment of a pixel at date.
func CharacterizePixel(cfg Config, px, py int64, date int, inputs PixelInputs) (CharacterizedPixel, error) {
	segments := make([]CharacterizedSegment, 0, len(inputs.Segments))
	for _, seg := range inputs.Segments {
		cs, err := Characterize(cfg, seg, date, inputs.Predictions)
		if err != nil {
			return CharacterizedPixel{}, err
		}
		segments = append(segments, cs)
	}
	return CharacterizedPixel{
		Px:       px,
		Py:       py,
		Date:     date,
		Segments: segments,
		Inputs:   inputs,
	}, nil
}

func segmentPredictions(sday int, predictions []Prediction) []Prediction {
	local := make([]Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Sday == sday {
			local = append(local, p)
		}
	}
	sort.SliceStable(local, func(i, j int) bool {
		return local[i].Pday < local[j].Pday
	})
	return local
}
