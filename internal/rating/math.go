package rating

import (
	"math"

	"padel-league/internal/constants"
)

// RatingForLevel maps a continuous skill level onto the Elo point scale:
// 1000 + (level - 2.5) * 400.
func RatingForLevel(level float64) float64 {
	return constants.BasePoints + (level-constants.DefaultLevel)*constants.PointsPerLevel
}

// SuggestedPoints is the integer baseline a player at the given level is
// expected to hold. Used by the recovery multiplier and by registration.
func SuggestedPoints(level float64) int {
	return int(math.Round(RatingForLevel(level)))
}

// ExpectedScore is the logistic win probability of side A against side B
// on the 400-point Elo scale.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampLevel bounds a level to the playable domain [1.0, 7.0].
func ClampLevel(level float64) float64 {
	return clamp(level, constants.MinLevel, constants.MaxLevel)
}
