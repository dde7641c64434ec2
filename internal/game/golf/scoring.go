package golf

// FirstSinkBonus is the extra score awarded to the first player to sink
// their ball in a round.
const FirstSinkBonus = int32(3)

// DNFPenalty is the fixed penalty for a player who never finishes the
// round, §4.C.1.
const DNFPenalty = int32(-1)

// Score is the single pure scoring function named by §4.C.1, kept
// separate from engine state so it can be re-exercised from any
// snapshot. Fewer strokes relative to par scores higher; the first
// player to sink gets a flat bonus; a non-finisher always scores
// DNFPenalty regardless of strokes taken.
func Score(strokes int, par int, wasFirstSink bool, finished bool) int32 {
	if !finished {
		return DNFPenalty
	}
	score := int32(par*2 - strokes)
	if wasFirstSink {
		score += FirstSinkBonus
	}
	return score
}
