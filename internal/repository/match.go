package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"padel-league/internal/domain"
	"padel-league/internal/store"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     store.DBTX
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: sqlDB, logger: logger}
}

func (r *MatchRepository) WithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{db: tx, logger: r.logger}
}

func (r *MatchRepository) Create(ctx context.Context, match *domain.Match) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (id, kind, seat1, seat2, seat3, seat4, status,
			result, processed_result, processed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		match.ID, string(match.Kind),
		match.Seats[0].Encode(), match.Seats[1].Encode(),
		match.Seats[2].Encode(), match.Seats[3].Encode(),
		string(match.Status), match.Result, match.ProcessedResult,
		nullTime(match.ProcessedAt), match.CreatedAt, match.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", match.ID, err)
	}
	return nil
}

func (r *MatchRepository) Get(ctx context.Context, id string) (*domain.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, seat1, seat2, seat3, seat4, status, result,
			processed_result, processed_at, created_at, updated_at
		FROM matches WHERE id = ?`, id)

	var m domain.Match
	var kind, status string
	var seats [4]string
	var processedAt sql.NullTime

	err := row.Scan(
		&m.ID, &kind, &seats[0], &seats[1], &seats[2], &seats[3],
		&status, &m.Result, &m.ProcessedResult, &processedAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Kind = domain.MatchKind(kind)
	m.Status = domain.MatchStatus(status)
	if processedAt.Valid {
		t := processedAt.Time
		m.ProcessedAt = &t
	}
	for i, raw := range seats {
		seat, err := domain.ParseSeat(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode seat %d of match %s: %w", i+1, id, err)
		}
		m.Seats[i] = seat
	}
	return &m, nil
}

// MarkSettled stamps the official result and the idempotency markers in
// one write.
func (r *MatchRepository) MarkSettled(ctx context.Context, id, result string, processedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE matches SET
			status = ?, result = ?, processed_result = ?, processed_at = ?,
			updated_at = ?
		WHERE id = ?`,
		string(domain.StatusSettled), result, result, processedAt,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark match %s settled: %w", id, err)
	}
	return nil
}
