package rating

import (
	"padel-league/internal/domain"
)

// pointsPerGame is the flat estimate used when synthesizing per-point
// attribution from a set score alone.
const pointsPerGame = 4

// EstimatePointDetails expands a result string into a flat per-point
// attribution list: every game played contributes four estimated points
// tagged with the set's winning side. Malformed or drawn tokens are
// skipped, never fatal.
func EstimatePointDetails(result string) []domain.PointAttribution {
	var points []domain.PointAttribution
	for i, set := range domain.ParseResult(result) {
		winner := set.Winner()
		if winner == "" {
			continue
		}
		total := (set.Home + set.Away) * pointsPerGame
		for p := 0; p < total; p++ {
			points = append(points, domain.PointAttribution{
				Set:    i + 1,
				Point:  p + 1,
				Winner: winner,
			})
		}
	}
	return points
}
