package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mww/fantasy_predictions/model"
)

const matchColumns = `id, tournament_id, home_id, away_id, home_goals, away_goals, starts_at, location, referee`

func (db *postgresDB) AddMatch(ctx context.Context, m *model.Match) error {
	const query = `INSERT INTO matches (
		tournament_id,
		home_id,
		away_id,
		home_goals,
		away_goals,
		starts_at,
		location,
		referee
	) VALUES (
		@tournamentID,
		@homeID,
		@awayID,
		@homeGoals,
		@awayGoals,
		@startsAt,
		@location,
		@referee
	) RETURNING id`

	args := pgx.NamedArgs{
		"tournamentID": m.TournamentID,
		"homeID":       m.HomeID,
		"awayID":       m.AwayID,
		"homeGoals":    m.HomeGoals,
		"awayGoals":    m.AwayGoals,
		"startsAt":     optionalTimestamptz(m.When),
		"location":     m.Location,
		"referee":      m.Referee,
	}
	if err := db.pool.QueryRow(ctx, query, args).Scan(&m.ID); err != nil {
		return fmt.Errorf("error inserting match: %w", translateError(err))
	}
	return nil
}

func (db *postgresDB) GetMatch(ctx context.Context, id int32) (*model.Match, error) {
	const query = `SELECT ` + matchColumns + ` FROM matches WHERE id=@id`

	m, err := scanMatch(db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error looking up match %d: %w", id, translateError(err))
	}
	return m, nil
}

func (db *postgresDB) MatchesBetween(ctx context.Context, tournamentID int32, from, until time.Time) ([]model.Match, error) {
	const query = `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id=@tournamentID AND starts_at BETWEEN @from AND @until
		ORDER BY starts_at, id`

	args := pgx.NamedArgs{
		"tournamentID": tournamentID,
		"from":         timestamptz(from),
		"until":        timestamptz(until),
	}
	return db.queryMatches(ctx, query, args)
}

func (db *postgresDB) LatestMatches(ctx context.Context, teamID, tournamentID int32, until time.Time) ([]model.Match, error) {
	const query = `SELECT ` + matchColumns + ` FROM matches
		WHERE (home_id=@teamID OR away_id=@teamID)
			AND (@tournamentID = 0 OR tournament_id=@tournamentID)
			AND starts_at <= @until
		ORDER BY starts_at DESC, id DESC`

	args := pgx.NamedArgs{
		"teamID":       teamID,
		"tournamentID": tournamentID,
		"until":        timestamptz(until),
	}
	return db.queryMatches(ctx, query, args)
}

func (db *postgresDB) queryMatches(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Match, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying matches: %w", translateError(err))
	}
	defer rows.Close()

	results := make([]model.Match, 0, 8)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning match: %w", err)
		}
		results = append(results, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with rows: %w", err)
	}
	return results, nil
}

func scanMatch(row pgx.Row) (*model.Match, error) {
	var m model.Match
	var startsAt pgtype.Timestamptz
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.HomeID,
		&m.AwayID,
		&m.HomeGoals,
		&m.AwayGoals,
		&startsAt,
		&m.Location,
		&m.Referee)
	if err != nil {
		return nil, err
	}
	m.When = timeOrNil(startsAt)
	return &m, nil
}
