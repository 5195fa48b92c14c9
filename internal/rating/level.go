package rating

const (
	levelBaseStep   = 0.03
	levelStrongGain = 0.08 // per level of gap against stronger opposition
	levelWeakGain   = 0.02
	levelMaxStep    = 0.15
	levelMinStep    = 0.01
)

// CalculateLevelChange drifts a player's skill level after a match. The
// drift is asymmetric: results against stronger opposition move the level
// faster than results against weaker opposition. The step is clamped to
// 0.15 per match and always carries at least 0.01 in the direction of the
// outcome. The caller clamps the resulting level to [1.0, 7.0].
func CalculateLevelChange(myLevel, opponentAvg float64, won bool) float64 {
	gap := opponentAvg - myLevel

	scale := levelWeakGain
	if gap > 0 {
		scale = levelStrongGain
	}

	var raw float64
	if won {
		raw = levelBaseStep + scale*gap
		return clamp(raw, levelMinStep, levelMaxStep)
	}

	raw = -levelBaseStep + scale*gap
	return clamp(raw, -levelMaxStep, -levelMinStep)
}
