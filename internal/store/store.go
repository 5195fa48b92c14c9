package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"padel-league/internal/constants"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// DBTX is the querying surface shared by *sql.DB and *sql.Tx, so every
// repository works identically inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner executes a read-compute-write closure as one atomic
// transaction, retrying the whole closure with backoff when a concurrent
// writer holds the lock. Closures must re-read all state they depend on,
// so re-execution is always safe.
type TxRunner struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTxRunner(db *sql.DB, logger zerolog.Logger) *TxRunner {
	return &TxRunner{db: db, logger: logger}
}

func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	backoff := retry.WithMaxRetries(constants.TxRetryAttempts, retry.NewExponential(constants.TxRetryBaseDelay))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := r.runOnce(ctx, fn)
		if err != nil && isConflict(err) {
			r.logger.Warn().Err(err).Int("attempt", attempt).Msg("transaction conflict, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isConflict(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}
