package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mww/fantasy_predictions/model"
	"gorm.io/gorm"
)

func isConcurrentUpdate(err error) bool {
	return errors.Is(err, model.ErrConcurrentUpdate)
}

func TestTranslateError(t *testing.T) {
	other := errors.New("connection reset")

	tests := map[string]struct {
		err      error
		expected error
	}{
		"no rows":       {err: pgx.ErrNoRows, expected: model.ErrNotFound},
		"wrapped":       {err: fmt.Errorf("scan: %w", pgx.ErrNoRows), expected: model.ErrNotFound},
		"unique":        {err: &pgconn.PgError{Code: "23505"}, expected: model.ErrDuplicateEntry},
		"foreign key":   {err: &pgconn.PgError{Code: "23503"}, expected: model.ErrNotFound},
		"check":         {err: &pgconn.PgError{Code: "23514"}, expected: model.ErrValidation},
		"deadlock":      {err: &pgconn.PgError{Code: "40P01"}, expected: model.ErrConcurrentUpdate},
		"serialization": {err: &pgconn.PgError{Code: "40001"}, expected: model.ErrConcurrentUpdate},
		"lock timeout":  {err: &pgconn.PgError{Code: "55P03"}, expected: model.ErrConcurrentUpdate},
		"other":         {err: other, expected: other},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			a := translateError(tc.err)
			if !errors.Is(a, tc.expected) {
				t.Errorf("expected: '%v', got '%v'", tc.expected, a)
			}
			if !errors.Is(a, tc.err) {
				t.Errorf("expected the original error to be kept, got '%v'", a)
			}
		})
	}

	if translateError(nil) != nil {
		t.Errorf("expected nil error to stay nil")
	}
}

func TestTranslateGormError(t *testing.T) {
	tests := map[string]struct {
		err      error
		expected error
	}{
		"not found":   {err: gorm.ErrRecordNotFound, expected: model.ErrNotFound},
		"duplicate":   {err: gorm.ErrDuplicatedKey, expected: model.ErrDuplicateEntry},
		"foreign key": {err: gorm.ErrForeignKeyViolated, expected: model.ErrNotFound},
		"check":       {err: errors.New("constraint failed: CHECK constraint failed: matches_distinct_teams (275)"), expected: model.ErrValidation},
		"unique text": {err: errors.New("constraint failed: UNIQUE constraint failed: teams.slug (2067)"), expected: model.ErrDuplicateEntry},
		"locked":      {err: errors.New("database is locked (5) (SQLITE_BUSY)"), expected: model.ErrConcurrentUpdate},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			a := translateGormError(tc.err)
			if !errors.Is(a, tc.expected) {
				t.Errorf("expected: '%v', got '%v'", tc.expected, a)
			}
		})
	}
}
