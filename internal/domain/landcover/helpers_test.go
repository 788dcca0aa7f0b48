package landcover

import (
	"io"
	"log/slog"
)

// class positions in DefaultConfig().Classes; codes are position+1
const (
	idxDeveloped = 0
	idxCropland  = 1
	idxGrass     = 2
	idxTree      = 3
)

const (
	codeDeveloped = 1
	codeCropland  = 2
	codeGrass     = 3
	codeTree      = 4
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustOrd(value string) int {
	ord, err := ParseOrdinal(value)
	if err != nil {
		panic(err)
	}
	return ord
}

// vec builds an eight class probability vector; unspecified classes are zero.
func vec(values map[int]float64) []float64 {
	out := make([]float64, 8)
	for idx, v := range values {
		out[idx] = v
	}
	return out
}

// flatSegment has constant reflectance, so its burn ratio is zero.
func flatSegment(sday, eday, bday string, chprob float64) Segment {
	return Segment{
		Sday:          mustOrd(sday),
		Eday:          mustOrd(eday),
		Bday:          mustOrd(bday),
		Chprob:        chprob,
		NirIntercept:  2000,
		SwirIntercept: 1000,
	}
}

// trendSegment moves NIR linearly from nirStart to nirEnd with SWIR fixed at 1000.
func trendSegment(sday, eday, bday string, nirStart, nirEnd float64) Segment {
	s, e := mustOrd(sday), mustOrd(eday)
	coef := (nirEnd - nirStart) / float64(e-s)
	return Segment{
		Sday:          s,
		Eday:          e,
		Bday:          mustOrd(bday),
		NirIntercept:  nirStart - coef*float64(s),
		NirCoef:       coef,
		SwirIntercept: 1000,
	}
}

func prediction(sday, date string, probs []float64) Prediction {
	return Prediction{Sday: mustOrd(sday), Pday: mustOrd(date), Prob: probs}
}

func pixelAt(date string, inputs PixelInputs) CharacterizedPixel {
	pixel, err := CharacterizePixel(DefaultConfig(), 100, 200, mustOrd(date), inputs)
	if err != nil {
		panic(err)
	}
	return pixel
}

// gapInputs returns two segments separated by a gap: A ends 2004-12-31 and breaks 2005-03-01, B starts 2005-06-01.
func gapInputs(classA, classB int) PixelInputs {
	return PixelInputs{
		Segments: []Segment{
			flatSegment("2000-01-01", "2004-12-31", "2005-03-01", 0.9),
			flatSegment("2005-06-01", "2010-01-01", "2010-01-01", 0),
		},
		Predictions: []Prediction{
			prediction("2000-01-01", "2002-07-01", vec(map[int]float64{classA: 0.8, idxDeveloped: 0.1})),
			prediction("2005-06-01", "2007-07-01", vec(map[int]float64{classB: 0.7, idxCropland: 0.2})),
		},
	}
}
