package landcover

import (
	"math"
	"slices"
	"sort"
)

// Confidence resolves the confidence code or 0-100 score at rank for the pixel's query date.
func Confidence(cfg Config, pixel CharacterizedPixel, rank int) int {
	return confidenceDecision(cfg, pixel, rank).value
}

func confidenceDecision(cfg Config, pixel CharacterizedPixel, rank int) decision {
	segs := pixel.Segments
	if len(segs) == 0 {
		return decision{value: cfg.Confidence.NoModel, rule: "no_model"}
	}
	first, last := segs[0], segs[len(segs)-1]
	hit, intersects := firstWhere(segs, func(s CharacterizedSegment) bool { return s.Intersects })
	prev, next, between := betweenEdaySday(segs)

	return decide([]rule{
		{
			name:   "back",
			match:  func() bool { return first.PrecedesSday },
			result: constant(cfg.Confidence.Back),
		},
		{
			name:   "after_break",
			match:  func() bool { return last.FollowsEday && math.Round(last.Chprob) == 1 },
			result: constant(cfg.Confidence.AfterBreak),
		},
		{
			name:   "forwards",
			match:  func() bool { return last.FollowsEday },
			result: constant(cfg.Confidence.Forwards),
		},
		{
			name:   "growth",
			match:  func() bool { return intersects && hit.Growth },
			result: constant(cfg.Confidence.Growth),
		},
		{
			name:   "decline",
			match:  func() bool { return intersects && hit.Decline },
			result: constant(cfg.Confidence.Decline),
		},
		{
			name:   "probability",
			match:  func() bool { return intersects },
			result: func() int { return scaledProbability(cfg, hit, rank) },
		},
		{
			name:   "samelc",
			match:  func() bool { return between && prev.Primary == next.Primary },
			result: constant(cfg.Confidence.SameLC),
		},
		{
			name:   "difflc",
			match:  func() bool { return between },
			result: constant(cfg.Confidence.DiffLC),
		},
		{
			name:   "none",
			match:  always,
			result: constant(cfg.Confidence.None),
		},
	})
}

// scaledProbability reads the rank-th highest probability of the segment's last prediction as 0-100.
func scaledProbability(cfg Config, seg CharacterizedSegment, rank int) int {
	if len(seg.Predictions) == 0 {
		return cfg.Confidence.None
	}
	probs := seg.Predictions[len(seg.Predictions)-1].Prob
	if rank < 0 || rank >= len(probs) {
		return cfg.Confidence.None
	}
	sorted := slices.Clone(probs)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	score := int(math.Round(sorted[rank] * 100))
	return min(max(score, 0), 100)
}
