package service

import (
	"context"
	"fmt"
	"time"

	"padel-league/internal/constants"
	"padel-league/internal/domain"
	"padel-league/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type MatchService struct {
	matches *repository.MatchRepository
	details *repository.PointDetailRepository
	logger  zerolog.Logger
}

func NewMatchService(matches *repository.MatchRepository, details *repository.PointDetailRepository, logger zerolog.Logger) *MatchService {
	return &MatchService{matches: matches, details: details, logger: logger}
}

// Create stores a pending match. Seats arrive in wire form: player ids,
// "guest:<name>:<level>" strings, or empty slots for open matches.
func (s *MatchService) Create(ctx context.Context, kind string, seats [4]string) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	matchKind := domain.MatchKind(kind)
	switch matchKind {
	case domain.KindCasual, domain.KindCompetitive:
	case "":
		matchKind = domain.KindCasual
	default:
		return nil, fmt.Errorf("unknown match kind %q", kind)
	}

	var parsed [4]domain.Seat
	for i, raw := range seats {
		seat, err := domain.ParseSeat(raw)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", i+1, err)
		}
		parsed[i] = seat
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate match id: %w", err)
	}

	now := time.Now()
	match := &domain.Match{
		ID:        id,
		Kind:      matchKind,
		Seats:     parsed,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.matches.Create(ctx, match); err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Msg("failed to create match")
		return nil, err
	}

	s.logger.Info().Str("match_id", match.ID).Str("kind", string(matchKind)).Msg("match created")
	return match, nil
}

func (s *MatchService) Get(ctx context.Context, id string) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.matches.Get(ctx, id)
}

func (s *MatchService) PointDetail(ctx context.Context, matchID string) (*domain.MatchPointDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.details.GetByMatch(ctx, matchID)
}
