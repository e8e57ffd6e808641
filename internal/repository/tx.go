package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaddai/storefront/internal/domain"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// can run either standalone or inside a caller's transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx runs fn inside a transaction, rolling back on error and
// committing otherwise.
func WithTx[T any](ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) (T, error)) (_ T, txErr error) {
	var zero T

	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("pool.Begin: %w", err)
	}

	// Ensure proper rollback handling
	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(tx)
	if err != nil {
		return zero, mapConcurrencyAbort(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, mapConcurrencyAbort(fmt.Errorf("tx.Commit: %w", err))
	}

	return result, nil
}

// mapConcurrencyAbort tags transactions Postgres killed to break a lock
// cycle (40P01) or a serialization anomaly (40001) as domain.ErrConflict:
// a race the caller may retry, not a caller mistake.
func mapConcurrencyAbort(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "40P01", "40001":
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	default:
		return err
	}
}
