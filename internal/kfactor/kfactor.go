package kfactor

import (
	"time"

	"padel-league/internal/constants"
	"padel-league/internal/domain"

	"github.com/rs/zerolog"
)

// Provider computes the per-player dynamic K-factor fed into the rating
// math. It is owned by the attribute-evolution subsystem; the settlement
// path only consumes the number it returns.
type Provider struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewProvider(logger zerolog.Logger) *Provider {
	return &Provider{logger: logger, now: time.Now}
}

// GetDynamicK resolves the volatility constant for one player:
// long-inactive players re-enter at 1.5x the rookie constant, rookies stay
// volatile, established high-point players settle at the pro constant.
func (p *Provider) GetDynamicK(player *domain.Player) float64 {
	switch {
	case player.LastMatchAt != nil && p.now().Sub(*player.LastMatchAt) > constants.InactiveAfter:
		return constants.RookieK * constants.InactiveKBoost
	case player.MatchesPlayed < constants.RookieMatchCount:
		return constants.RookieK
	case player.Points > constants.ProPointsThreshold:
		return constants.ProK
	default:
		return constants.NormalK
	}
}
