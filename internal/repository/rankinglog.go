package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"padel-league/internal/domain"
	"padel-league/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RankingLogRepository struct {
	db     store.DBTX
	logger zerolog.Logger
}

func NewRankingLogRepository(sqlDB *sql.DB, logger zerolog.Logger) *RankingLogRepository {
	return &RankingLogRepository{db: sqlDB, logger: logger}
}

func (r *RankingLogRepository) WithTx(tx *sql.Tx) *RankingLogRepository {
	return &RankingLogRepository{db: tx, logger: r.logger}
}

func (r *RankingLogRepository) Insert(ctx context.Context, entry *domain.RankingLogEntry) error {
	if entry.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		entry.ID = id
	}

	breakdown, err := json.Marshal(entry.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	factors, err := json.Marshal(entry.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ranking_logs (id, match_id, player_id, delta,
			points_after, level_after, did_win, rule, breakdown, factors,
			created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.MatchID, entry.PlayerID, entry.Delta,
		entry.PointsAfter, entry.LevelAfter, entry.DidWin, entry.Rule,
		string(breakdown), string(factors), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ranking log for %s: %w", entry.PlayerID, err)
	}
	return nil
}

func (r *RankingLogRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]domain.RankingLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, match_id, player_id, delta, points_after, level_after,
			did_win, rule, breakdown, factors, created_at
		FROM ranking_logs
		WHERE player_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.RankingLogEntry
	for rows.Next() {
		var e domain.RankingLogEntry
		var breakdown, factors string
		err := rows.Scan(
			&e.ID, &e.MatchID, &e.PlayerID, &e.Delta, &e.PointsAfter,
			&e.LevelAfter, &e.DidWin, &e.Rule, &breakdown, &factors,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(breakdown), &e.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown: %w", err)
		}
		if err := json.Unmarshal([]byte(factors), &e.Factors); err != nil {
			return nil, fmt.Errorf("failed to decode factors: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByMatch reports how many log entries a settlement produced, used
// by the idempotency tests and by reconciliation tooling.
func (r *RankingLogRepository) CountByMatch(ctx context.Context, matchID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ranking_logs WHERE match_id = ?`, matchID).Scan(&count)
	return count, err
}
