package landcover

// Landcover resolves the class at rank (0 primary, 1 secondary) for the pixel's query date.
func Landcover(cfg Config, pixel CharacterizedPixel, rank int) int {
	return landcoverDecision(cfg, pixel, rank).value
}

func landcoverDecision(cfg Config, pixel CharacterizedPixel, rank int) decision {
	segs := pixel.Segments
	if len(segs) == 0 {
		return decision{value: cfg.Landcover.NoModel, rule: "no_model"}
	}
	none := cfg.NoneCode()
	first, last := segs[0], segs[len(segs)-1]
	hits := intersecting(segs)
	prev, next, between := betweenEdaySday(segs)
	_, afterBreak, broken := betweenBdaySday(segs)
	gap, inGap := firstWhere(segs, func(s CharacterizedSegment) bool { return s.BtwEdayBday })

	return decide([]rule{
		{
			name:   "fill_begin",
			match:  func() bool { return first.PrecedesSday && cfg.Fill.Begin },
			result: func() int { return first.classAt(rank, none) },
		},
		{
			name:   "insufficient_begin",
			match:  func() bool { return first.PrecedesSday },
			result: constant(cfg.Landcover.Insufficient),
		},
		{
			name:   "fill_end",
			match:  func() bool { return last.FollowsEday && cfg.Fill.End },
			result: func() int { return last.classAt(rank, none) },
		},
		{
			name:   "insufficient_end",
			match:  func() bool { return last.FollowsEday },
			result: constant(cfg.Landcover.Insufficient),
		},
		{
			name:   "intersects",
			match:  func() bool { return len(hits) == 1 },
			result: func() int { return hits[0].classAt(rank, none) },
		},
		{
			name: "fill_samelc",
			match: func() bool {
				return cfg.Fill.SameLC && between && prev.classAt(rank, none) == next.classAt(rank, none)
			},
			result: func() int { return prev.classAt(rank, none) },
		},
		{
			name:   "fill_difflc_after_break",
			match:  func() bool { return cfg.Fill.DiffLC && broken },
			result: func() int { return afterBreak.classAt(rank, none) },
		},
		{
			name:   "fill_difflc_before_break",
			match:  func() bool { return cfg.Fill.DiffLC && inGap },
			result: func() int { return gap.classAt(rank, none) },
		},
		{
			name:   "between",
			match:  always,
			result: constant(cfg.Landcover.Between),
		},
	})
}
