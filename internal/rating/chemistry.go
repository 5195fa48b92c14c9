package rating

import (
	"math"

	"padel-league/internal/domain"
)

const (
	chemistryLevelPenaltyCap  = 0.24
	chemistryPointsPenaltyCap = 0.18
)

// EstimateTeamChemistry guesses how well a pair plays together from the
// player's consistency stat, penalized by the level and points gap to the
// partner. Solo estimation and guest partners fall back to a neutral 0.5.
// The result is bounded to [0.2, 1].
func EstimateTeamChemistry(player *domain.Player, partner *domain.Player) float64 {
	if player == nil || partner == nil {
		return 0.5
	}

	base := clamp(player.Stats.Consistency, 0, 100) / 100

	levelPenalty := math.Min(chemistryLevelPenaltyCap, math.Abs(player.Level-partner.Level)*0.12)
	pointsPenalty := math.Min(chemistryPointsPenaltyCap, math.Abs(float64(player.Points-partner.Points))/2500)

	return clamp(base-levelPenalty-pointsPenalty, 0.2, 1)
}
