package chip

import (
	"cmp"
	"fmt"
	"slices"
)

type pixelKey struct {
	px int64
	py int64
}

// GroupByPixel splits chip inputs per pixel. Every coordinate seen in either collection gets an entry,
// so a pixel with predictions but no segments still produces a (no model) record. Output is ordered by px, py.
func GroupByPixel(inputs Inputs) []PixelInputs {
	index := make(map[pixelKey]*PixelInputs)
	get := func(px, py int64) *PixelInputs {
		k := pixelKey{px: px, py: py}
		p, ok := index[k]
		if !ok {
			p = &PixelInputs{Px: px, Py: py}
			index[k] = p
		}
		return p
	}
	for _, s := range inputs.Segments {
		p := get(s.Px, s.Py)
		p.Segments = append(p.Segments, s)
	}
	for _, pr := range inputs.Predictions {
		p := get(pr.Px, pr.Py)
		p.Predictions = append(p.Predictions, pr)
	}

	out := make([]PixelInputs, 0, len(index))
	for _, p := range index {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b PixelInputs) int {
		if c := cmp.Compare(a.Px, b.Px); c != 0 {
			return c
		}
		return cmp.Compare(a.Py, b.Py)
	})
	return out
}

// ProductKey is the object key of one chip date: <product>/<cx>/<cy>/<date>.<ext>.
func ProductKey(format Format, product string, cx, cy int64, date string) string {
	return fmt.Sprintf("%s/%d/%d/%s.%s", product, cx, cy, date, format.Extension())
}
