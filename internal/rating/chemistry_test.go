package rating

import (
	"testing"

	"padel-league/internal/domain"

	"github.com/stretchr/testify/assert"
)

func testPlayer(level float64, points int, consistency float64) *domain.Player {
	return &domain.Player{
		Level:  level,
		Points: points,
		Stats:  domain.AdvancedStats{Consistency: consistency},
	}
}

func TestEstimateTeamChemistry(t *testing.T) {
	tests := []struct {
		name     string
		player   *domain.Player
		partner  *domain.Player
		expected float64
	}{{
		"no partner falls back to neutral",
		testPlayer(3.0, 1200, 80),
		nil,
		0.5,
	}, {
		"equal partners keep the consistency base",
		testPlayer(3.0, 1200, 50),
		testPlayer(3.0, 1200, 50),
		0.5,
	}, {
		"level gap penalized",
		testPlayer(3.0, 1200, 80),
		testPlayer(4.0, 1200, 50),
		0.68,
	}, {
		"level gap penalty is capped",
		testPlayer(3.0, 1200, 80),
		testPlayer(6.0, 1200, 50),
		0.56,
	}, {
		"points gap penalty is capped",
		testPlayer(3.0, 1200, 80),
		testPlayer(3.0, 2400, 50),
		0.62,
	}, {
		"floor holds for weak pairings",
		testPlayer(3.0, 800, 20),
		testPlayer(5.5, 2400, 50),
		0.2,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.expected, EstimateTeamChemistry(test.player, test.partner), 1e-9)
		})
	}
}

func TestEstimateTeamChemistryAlwaysBounded(t *testing.T) {
	player := testPlayer(1.0, 0, 0)
	partner := testPlayer(7.0, 2800, 100)

	chem := EstimateTeamChemistry(player, partner)
	assert.GreaterOrEqual(t, chem, 0.2)
	assert.LessOrEqual(t, chem, 1.0)
}
