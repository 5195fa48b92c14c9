package kfactor

import (
	"testing"
	"time"

	"padel-league/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetDynamicK(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	provider := NewProvider(zerolog.Nop())
	provider.now = func() time.Time { return now }

	recent := now.Add(-48 * time.Hour)
	stale := now.Add(-45 * 24 * time.Hour)

	tests := []struct {
		name   string
		player domain.Player
		k      float64
	}{{
		"long-inactive player reopens volatility",
		domain.Player{MatchesPlayed: 100, Points: 2500, LastMatchAt: &stale},
		60,
	}, {
		"rookie stays volatile",
		domain.Player{MatchesPlayed: 5, Points: 900, LastMatchAt: &recent},
		40,
	}, {
		"rookie without any match yet",
		domain.Player{MatchesPlayed: 0},
		40,
	}, {
		"high-point veteran settles down",
		domain.Player{MatchesPlayed: 120, Points: 2400, LastMatchAt: &recent},
		24,
	}, {
		"ordinary veteran",
		domain.Player{MatchesPlayed: 60, Points: 1500, LastMatchAt: &recent},
		32,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.k, provider.GetDynamicK(&test.player))
		})
	}
}
