package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mww/fantasy_predictions/model"
)

// Postgres error codes that are translated into model errors.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNotNullViolation     = "23502"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

func New(ctx context.Context, connString string, clock clock.Clock) (DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &postgresDB{pool: pool, clock: clock}, nil
}

type postgresDB struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

func (db *postgresDB) Close() {
	db.pool.Close()
}

// translateError wraps storage errors with the matching model sentinel so
// callers can check them with errors.Is.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", model.ErrDuplicateEntry, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", model.ErrNotFound, err)
		case pgCheckViolation, pgNotNullViolation:
			return fmt.Errorf("%w: %w", model.ErrValidation, err)
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %w", model.ErrConcurrentUpdate, err)
		}
	}
	return err
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:             t.UTC(),
		InfinityModifier: pgtype.Finite,
		Valid:            !t.IsZero(),
	}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timestamptz(*t)
}

func timeOrNil(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

type DBTrend struct {
	trend model.Trend
}

func (t *DBTrend) ScanText(v pgtype.Text) error {
	t.trend = model.ParseTrend(v.String)
	return nil
}

func (t *DBTrend) TextValue() (pgtype.Text, error) {
	return pgtype.Text{
		String: string(t.trend),
		Valid:  true,
	}, nil
}

type DBJoinOrigin struct {
	origin model.JoinOrigin
}

func (o *DBJoinOrigin) ScanText(v pgtype.Text) error {
	origin, err := model.ParseJoinOrigin(v.String)
	if err != nil {
		return err
	}
	o.origin = origin
	return nil
}

func (o *DBJoinOrigin) TextValue() (pgtype.Text, error) {
	return pgtype.Text{
		String: string(o.origin),
		Valid:  true,
	}, nil
}
