package landcover

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// RawSegment is a change detection segment as delivered by the upstream service.
type RawSegment struct {
	Px     int64     `json:"px"`
	Py     int64     `json:"py"`
	Sday   string    `json:"sday" validate:"required,datetime=2006-01-02"`
	Eday   string    `json:"eday" validate:"required,datetime=2006-01-02"`
	Bday   string    `json:"bday" validate:"required,datetime=2006-01-02"`
	Chprob float64   `json:"chprob" validate:"gte=0,lte=1"`
	Niint  float64   `json:"niint"`
	Nicoef []float64 `json:"nicoef" validate:"min=1"`
	S1int  float64   `json:"s1int"`
	S1coef []float64 `json:"s1coef" validate:"min=1"`
}

// RawPrediction is a classifier prediction as delivered by the upstream service.
type RawPrediction struct {
	Px   int64     `json:"px"`
	Py   int64     `json:"py"`
	Sday string    `json:"sday" validate:"required,datetime=2006-01-02"`
	Date string    `json:"date" validate:"required,datetime=2006-01-02"`
	Prob []float64 `json:"prob" validate:"min=1,dive,gte=0,lte=1"`
}

// Validator holds the structural checks applied to a pixel before characterization.
type Validator struct {
	validate *validator.Validate
	classes  int
}

// NewValidator builds a validator expecting probability vectors with one entry per class.
func NewValidator(classes int) *Validator {
	return &Validator{validate: validator.New(), classes: classes}
}

// ValidSegments reports whether the collection is non-empty and every record is well formed.
func (v *Validator) ValidSegments(segments []RawSegment) bool {
	if len(segments) == 0 {
		return false
	}
	for i := range segments {
		if err := v.validate.Struct(&segments[i]); err != nil {
			return false
		}
	}
	return true
}

// ValidPredictions reports whether the collection is non-empty, well formed and dimensionally consistent.
func (v *Validator) ValidPredictions(predictions []RawPrediction) bool {
	if len(predictions) == 0 {
		return false
	}
	for i := range predictions {
		if err := v.validate.Struct(&predictions[i]); err != nil {
			return false
		}
		if v.classes > 0 && len(predictions[i].Prob) != v.classes {
			return false
		}
	}
	return true
}

// ParseInputs converts validated raw records into ordinal form, ordering segments by start date.
func ParseInputs(segments []RawSegment, predictions []RawPrediction) (PixelInputs, error) {
	out := PixelInputs{
		Segments:    make([]Segment, 0, len(segments)),
		Predictions: make([]Prediction, 0, len(predictions)),
	}
	for _, raw := range segments {
		seg, err := parseSegment(raw)
		if err != nil {
			return PixelInputs{}, err
		}
		out.Segments = append(out.Segments, seg)
	}
	for _, raw := range predictions {
		sday, err := ParseOrdinal(raw.Sday)
		if err != nil {
			return PixelInputs{}, fmt.Errorf("prediction sday: %w", err)
		}
		pday, err := ParseOrdinal(raw.Date)
		if err != nil {
			return PixelInputs{}, fmt.Errorf("prediction date: %w", err)
		}
		out.Predictions = append(out.Predictions, Prediction{Sday: sday, Pday: pday, Prob: raw.Prob})
	}
	sort.SliceStable(out.Segments, func(i, j int) bool {
		return out.Segments[i].Sday < out.Segments[j].Sday
	})
	return out, nil
}

func parseSegment(raw RawSegment) (Segment, error) {
	days := make([]int, 3)
	for i, value := range []string{raw.Sday, raw.Eday, raw.Bday} {
		ord, err := ParseOrdinal(value)
		if err != nil {
			return Segment{}, fmt.Errorf("segment date %q: %w", value, err)
		}
		days[i] = ord
	}
	if len(raw.Nicoef) == 0 || len(raw.S1coef) == 0 {
		return Segment{}, fmt.Errorf("segment %s missing coefficients", raw.Sday)
	}
	return Segment{
		Sday:          days[0],
		Eday:          days[1],
		Bday:          days[2],
		Chprob:        raw.Chprob,
		NirIntercept:  raw.Niint,
		NirCoef:       raw.Nicoef[0],
		SwirIntercept: raw.S1int,
		SwirCoef:      raw.S1coef[0],
	}, nil
}
