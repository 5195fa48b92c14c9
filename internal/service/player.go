package service

import (
	"context"
	"fmt"
	"time"

	"padel-league/internal/constants"
	"padel-league/internal/domain"
	"padel-league/internal/rating"
	"padel-league/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type PlayerService struct {
	players *repository.PlayerRepository
	logs    *repository.RankingLogRepository
	logger  zerolog.Logger
}

func NewPlayerService(players *repository.PlayerRepository, logs *repository.RankingLogRepository, logger zerolog.Logger) *PlayerService {
	return &PlayerService{players: players, logs: logs, logger: logger}
}

// Register creates a league player. Points start at the level baseline;
// anything out of the level domain is clamped, not rejected.
func (s *PlayerService) Register(ctx context.Context, name string, level *float64) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if name == "" {
		return nil, fmt.Errorf("player name is required")
	}

	lvl := constants.DefaultLevel
	if level != nil {
		lvl = rating.ClampLevel(*level)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate player id: %w", err)
	}

	now := time.Now()
	player := &domain.Player{
		ID:     id,
		Name:   name,
		Level:  lvl,
		Points: rating.SuggestedPoints(lvl),
		Stats: domain.AdvancedStats{
			Consistency: 50,
			Pressure:    50,
			Aggression:  50,
			WinnersAvg:  10,
			UEAvg:       10,
		},
		SubRatings: map[string]int{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.players.Create(ctx, player); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to register player")
		return nil, err
	}

	s.logger.Info().
		Str("player_id", player.ID).
		Str("name", name).
		Float64("level", lvl).
		Int("points", player.Points).
		Msg("player registered")
	return player, nil
}

func (s *PlayerService) Get(ctx context.Context, id string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.players.Get(ctx, id)
}

func (s *PlayerService) Leaderboard(ctx context.Context, limit int) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.LeaderboardDefaultLimit
	}
	return s.players.Leaderboard(ctx, limit)
}

func (s *PlayerService) History(ctx context.Context, playerID string, limit int) ([]domain.RankingLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.HistoryDefaultLimit
	}
	return s.logs.GetByPlayer(ctx, playerID, limit)
}
