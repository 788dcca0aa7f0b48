package landcover

// Segment is a fitted change detection model. Dates are ordinal days.
type Segment struct {
	Sday          int
	Eday          int
	Bday          int
	Chprob        float64
	NirIntercept  float64
	NirCoef       float64
	SwirIntercept float64
	SwirCoef      float64
}

// Prediction is one classifier output. Sday identifies the owning segment.
type Prediction struct {
	Sday int
	Pday int
	Prob []float64
}

// PixelInputs are the parsed, validated segments and predictions of one pixel.
type PixelInputs struct {
	Segments    []Segment
	Predictions []Prediction
}

// CharacterizedSegment is a segment evaluated against a single query date.
type CharacterizedSegment struct {
	Sday   int
	Eday   int
	Bday   int
	Chprob float64

	Intersects   bool
	PrecedesSday bool
	FollowsEday  bool
	FollowsBday  bool
	BtwEdayBday  bool

	BurnRatio float64
	Growth    bool
	Decline   bool

	Predictions []Prediction
	Primary     int
	Secondary   int
}

func (s CharacterizedSegment) classAt(rank, fallback int) int {
	switch rank {
	case 0:
		return s.Primary
	case 1:
		return s.Secondary
	default:
		return fallback
	}
}

// CharacterizedPixel is immutable once built. Inputs is kept so the pixel can be re-evaluated at another date.
type CharacterizedPixel struct {
	Px       int64
	Py       int64
	Date     int
	Segments []CharacterizedSegment
	Inputs   PixelInputs
}

// Product is the per pixel, per date output record.
type Product struct {
	Px        int64  `json:"px"`
	Py        int64  `json:"py"`
	Date      string `json:"date"`
	LCPri     int    `json:"lcpri"`
	LCSec     int    `json:"lcsec"`
	LCPriConf int    `json:"lcpriconf"`
	LCSecConf int    `json:"lcsecconf"`
	LCChange  int    `json:"lcchg"`
}
