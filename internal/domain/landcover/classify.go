package landcover

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// GetClass returns the code of the class holding the rank-th highest probability.
// When probabilities tie, the first position carrying the value wins, so rank 0 and 1 may name the same class.
func GetClass(cfg Config, probs []float64, rank int) int {
	if rank < 0 || rank >= len(probs) {
		return cfg.NoneCode()
	}
	sorted := slices.Clone(probs)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	idx := slices.Index(probs, sorted[rank])
	if idx < 0 || idx >= len(cfg.Classes) {
		return cfg.NoneCode()
	}
	return cfg.code(cfg.Classes[idx])
}

// Classify decides the class of a segment at rank for the query date.
// predictions must be the segment's own predictions sorted by date.
func Classify(cfg Config, predictions []Prediction, date, rank int, burnRatio float64) int {
	if len(predictions) > 0 {
		grass := cfg.code(cfg.GrassClass)
		tree := cfg.code(cfg.TreeClass)
		firstClass := GetClass(cfg, predictions[0].Prob, 0)
		lastClass := GetClass(cfg, predictions[len(predictions)-1].Prob, 0)

		switch {
		case burnRatio > GrowthThreshold && firstClass == grass && lastClass == tree:
			if reached(cfg, predictions, tree, date) {
				return pick(cfg, rank, tree, grass)
			}
			return pick(cfg, rank, grass, tree)
		case burnRatio < DeclineThreshold && firstClass == tree && lastClass == grass:
			if reached(cfg, predictions, grass, date) {
				return pick(cfg, rank, grass, tree)
			}
			return pick(cfg, rank, tree, grass)
		}
	}
	return GetClass(cfg, meanProbability(predictions), rank)
}

// reached reports whether date is on or after the first prediction whose primary class is code.
func reached(cfg Config, predictions []Prediction, code, date int) bool {
	for _, p := range predictions {
		if GetClass(cfg, p.Prob, 0) == code {
			return date >= p.Pday
		}
	}
	return false
}

func pick(cfg Config, rank int, ordered ...int) int {
	if rank < 0 || rank >= len(ordered) {
		return cfg.NoneCode()
	}
	return ordered[rank]
}

// meanProbability averages the probability vectors element-wise. Ragged input yields nil.
func meanProbability(predictions []Prediction) []float64 {
	if len(predictions) == 0 {
		return nil
	}
	width := len(predictions[0].Prob)
	sum := make([]float64, width)
	for _, p := range predictions {
		if len(p.Prob) != width {
			return nil
		}
		floats.Add(sum, p.Prob)
	}
	floats.Scale(1/float64(len(predictions)), sum)
	return sum
}
