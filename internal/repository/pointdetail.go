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

type PointDetailRepository struct {
	db     store.DBTX
	logger zerolog.Logger
}

func NewPointDetailRepository(sqlDB *sql.DB, logger zerolog.Logger) *PointDetailRepository {
	return &PointDetailRepository{db: sqlDB, logger: logger}
}

func (r *PointDetailRepository) WithTx(tx *sql.Tx) *PointDetailRepository {
	return &PointDetailRepository{db: tx, logger: r.logger}
}

func (r *PointDetailRepository) Insert(ctx context.Context, detail *domain.MatchPointDetail) error {
	if detail.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		detail.ID = id
	}

	points, err := json.Marshal(detail.Points)
	if err != nil {
		return fmt.Errorf("failed to encode point attribution: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO match_point_details (id, match_id, points, created_at)
		VALUES (?, ?, ?, ?)`,
		detail.ID, detail.MatchID, string(points), detail.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert point detail for match %s: %w", detail.MatchID, err)
	}
	return nil
}

func (r *PointDetailRepository) GetByMatch(ctx context.Context, matchID string) (*domain.MatchPointDetail, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, match_id, points, created_at
		FROM match_point_details WHERE match_id = ?`, matchID)

	var d domain.MatchPointDetail
	var points string
	if err := row.Scan(&d.ID, &d.MatchID, &points, &d.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(points), &d.Points); err != nil {
		return nil, fmt.Errorf("failed to decode point attribution: %w", err)
	}
	return &d, nil
}
