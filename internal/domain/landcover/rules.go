package landcover

// rule is one (predicate, result) pair of a decision table. Tables are evaluated in order; first match wins.
type rule struct {
	name   string
	match  func() bool
	result func() int
}

type decision struct {
	value int
	rule  string
}

func decide(rules []rule) decision {
	for _, r := range rules {
		if r.match() {
			return decision{value: r.result(), rule: r.name}
		}
	}
	return decision{}
}

func always() bool { return true }

func constant(v int) func() int {
	return func() int { return v }
}

// adjacentPair scans consecutive segments for the first pair where left holds on the earlier
// segment and right on the later one.
func adjacentPair(segments []CharacterizedSegment, left, right func(CharacterizedSegment) bool) (CharacterizedSegment, CharacterizedSegment, bool) {
	for i := 0; i+1 < len(segments); i++ {
		if left(segments[i]) && right(segments[i+1]) {
			return segments[i], segments[i+1], true
		}
	}
	return CharacterizedSegment{}, CharacterizedSegment{}, false
}

// betweenEdaySday finds the two segments the query date falls strictly between.
func betweenEdaySday(segments []CharacterizedSegment) (CharacterizedSegment, CharacterizedSegment, bool) {
	return adjacentPair(segments,
		func(s CharacterizedSegment) bool { return s.FollowsEday },
		func(s CharacterizedSegment) bool { return s.PrecedesSday })
}

// betweenBdaySday finds the pair where the query date is past the earlier break and before the next start.
func betweenBdaySday(segments []CharacterizedSegment) (CharacterizedSegment, CharacterizedSegment, bool) {
	return adjacentPair(segments,
		func(s CharacterizedSegment) bool { return s.FollowsBday },
		func(s CharacterizedSegment) bool { return s.PrecedesSday })
}

func intersecting(segments []CharacterizedSegment) []CharacterizedSegment {
	var out []CharacterizedSegment
	for _, s := range segments {
		if s.Intersects {
			out = append(out, s)
		}
	}
	return out
}

func firstWhere(segments []CharacterizedSegment, pred func(CharacterizedSegment) bool) (CharacterizedSegment, bool) {
	for _, s := range segments {
		if pred(s) {
			return s, true
		}
	}
	return CharacterizedSegment{}, false
}
