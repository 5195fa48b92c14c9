package rating

// Fairness rule names, recorded on every ranking log entry.
const (
	RuleNone                = "none"
	RuleFavoriteCap         = "favorite_cap"
	RuleHighExpectedCap     = "high_expected_cap"
	RuleUpsetFloor          = "upset_floor"
	RuleUnderdogShield      = "underdog_shield"
	RuleFavoriteLossPenalty = "favorite_loss_penalty"
	RuleAbsoluteCap         = "absolute_cap"
	RuleAbsoluteFloor       = "absolute_floor"
)

type fairnessBounds struct {
	favoriteCap     int // max gain when clearly stronger
	highExpectedCap int // max gain when expected winrate is high
	upsetFloor      int // min gain for a clear upset
	absoluteCap     int // hard gain ceiling
	underdogShield  int // mildest loss bound for clear underdogs
	favoriteLoss    int // forced minimum loss for beaten favorites
	absoluteFloor   int // hard loss floor
}

var casualBounds = fairnessBounds{
	favoriteCap:     6,
	highExpectedCap: 8,
	upsetFloor:      10,
	absoluteCap:     24,
	underdogShield:  -5,
	favoriteLoss:    -14,
	absoluteFloor:   -20,
}

var competitiveBounds = fairnessBounds{
	favoriteCap:     8,
	highExpectedCap: 10,
	upsetFloor:      14,
	absoluteCap:     32,
	underdogShield:  -6,
	favoriteLoss:    -16,
	absoluteFloor:   -24,
}

// FairnessResult is the guard's verdict: the adjusted delta and the name
// of the rule that fired, or "none".
type FairnessResult struct {
	Delta int
	Rule  string
}

// ApplyFairness post-processes a raw delta against the level gap and the
// expected win probability, clamping farming of weak opposition and
// over-punishment of upsets. Rules are evaluated in precedence order; the
// absolute bounds always hold.
func ApplyFairness(delta int, didWin bool, myLevel, opponentAvg float64, isCompetitive bool, expectedWinrate float64) FairnessResult {
	b := casualBounds
	if isCompetitive {
		b = competitiveBounds
	}
	gap := myLevel - opponentAvg

	if didWin {
		return applyWinRules(delta, gap, expectedWinrate, b)
	}
	return applyLossRules(delta, gap, expectedWinrate, b)
}

func applyWinRules(delta int, gap, expected float64, b fairnessBounds) FairnessResult {
	res := FairnessResult{Delta: delta, Rule: RuleNone}

	switch {
	case gap >= 0.8:
		if res.Delta > b.favoriteCap {
			res.Delta = b.favoriteCap
			res.Rule = RuleFavoriteCap
		}
	case expected >= 0.75:
		if res.Delta > b.highExpectedCap {
			res.Delta = b.highExpectedCap
			res.Rule = RuleHighExpectedCap
		}
	case gap <= -0.6:
		if res.Delta < b.upsetFloor {
			res.Delta = b.upsetFloor
			res.Rule = RuleUpsetFloor
		}
	}

	if res.Delta > b.absoluteCap {
		res.Delta = b.absoluteCap
		if res.Rule == RuleNone {
			res.Rule = RuleAbsoluteCap
		}
	}
	return res
}

func applyLossRules(delta int, gap, expected float64, b fairnessBounds) FairnessResult {
	res := FairnessResult{Delta: delta, Rule: RuleNone}

	switch {
	case gap <= -0.8:
		if res.Delta < b.underdogShield {
			res.Delta = b.underdogShield
			res.Rule = RuleUnderdogShield
		}
	case gap >= 0.8 || expected >= 0.75:
		if res.Delta > b.favoriteLoss {
			res.Delta = b.favoriteLoss
			res.Rule = RuleFavoriteLossPenalty
		}
	}

	if res.Delta < b.absoluteFloor {
		res.Delta = b.absoluteFloor
		if res.Rule == RuleNone {
			res.Rule = RuleAbsoluteFloor
		}
	}
	return res
}
