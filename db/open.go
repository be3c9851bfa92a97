package db

import (
	"context"
	"fmt"

	"github.com/itbasis/go-clock"
)

// Open connects to the store selected by driver: "postgres" uses dsn as the
// connection string and "sqlite" as the database file path.
func Open(ctx context.Context, driver, dsn string, clock clock.Clock) (DB, error) {
	switch driver {
	case "postgres":
		return New(ctx, dsn, clock)
	case "sqlite":
		return NewSQLite(dsn, clock)
	default:
		return nil, fmt.Errorf("unknown db driver: %s", driver)
	}
}
