package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"padel-league/internal/domain"
	"padel-league/internal/store"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     store.DBTX
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

// WithTx binds the repository to an open transaction.
func (r *PlayerRepository) WithTx(tx *sql.Tx) *PlayerRepository {
	return &PlayerRepository{db: tx, logger: r.logger}
}

const playerColumns = `id, name, level, points, matches_played, wins, streak,
	last_match_at, consistency, pressure, aggression, winners_avg, ue_avg,
	sub_ratings, created_at, updated_at`

func (r *PlayerRepository) Create(ctx context.Context, player *domain.Player) error {
	subRatings, err := marshalSubRatings(player.SubRatings)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		player.ID, player.Name, player.Level, player.Points,
		player.MatchesPlayed, player.Wins, player.Streak,
		nullTime(player.LastMatchAt),
		player.Stats.Consistency, player.Stats.Pressure, player.Stats.Aggression,
		player.Stats.WinnersAvg, player.Stats.UEAvg,
		subRatings, player.CreatedAt, player.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player %s: %w", player.ID, err)
	}
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	return scanPlayer(row)
}

func (r *PlayerRepository) Update(ctx context.Context, player *domain.Player) error {
	subRatings, err := marshalSubRatings(player.SubRatings)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE players SET
			name = ?, level = ?, points = ?, matches_played = ?, wins = ?,
			streak = ?, last_match_at = ?, consistency = ?, pressure = ?,
			aggression = ?, winners_avg = ?, ue_avg = ?, sub_ratings = ?,
			updated_at = ?
		WHERE id = ?`,
		player.Name, player.Level, player.Points, player.MatchesPlayed,
		player.Wins, player.Streak, nullTime(player.LastMatchAt),
		player.Stats.Consistency, player.Stats.Pressure, player.Stats.Aggression,
		player.Stats.WinnersAvg, player.Stats.UEAvg, subRatings,
		time.Now(), player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	return nil
}

func (r *PlayerRepository) Leaderboard(ctx context.Context, limit int) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+playerColumns+` FROM players
		ORDER BY points DESC, level DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*domain.Player, error) {
	var p domain.Player
	var lastMatch sql.NullTime
	var subRatings string

	err := row.Scan(
		&p.ID, &p.Name, &p.Level, &p.Points, &p.MatchesPlayed, &p.Wins,
		&p.Streak, &lastMatch,
		&p.Stats.Consistency, &p.Stats.Pressure, &p.Stats.Aggression,
		&p.Stats.WinnersAvg, &p.Stats.UEAvg,
		&subRatings, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastMatch.Valid {
		t := lastMatch.Time
		p.LastMatchAt = &t
	}
	if err := json.Unmarshal([]byte(subRatings), &p.SubRatings); err != nil {
		return nil, fmt.Errorf("failed to decode sub ratings for %s: %w", p.ID, err)
	}
	return &p, nil
}

func marshalSubRatings(subRatings map[string]int) (string, error) {
	if subRatings == nil {
		subRatings = map[string]int{}
	}
	raw, err := json.Marshal(subRatings)
	if err != nil {
		return "", fmt.Errorf("failed to encode sub ratings: %w", err)
	}
	return string(raw), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
