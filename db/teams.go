package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mww/fantasy_predictions/model"
)

func (db *postgresDB) AddTeam(ctx context.Context, t *model.Team) error {
	const query = `INSERT INTO teams (name, slug) VALUES (@name, @slug) RETURNING id`

	args := pgx.NamedArgs{
		"name": t.Name,
		"slug": t.Slug,
	}
	if err := db.pool.QueryRow(ctx, query, args).Scan(&t.ID); err != nil {
		return fmt.Errorf("error inserting team %s: %w", t.Slug, translateError(err))
	}
	return nil
}

func (db *postgresDB) GetTeam(ctx context.Context, id int32) (*model.Team, error) {
	const query = `SELECT id, name, slug FROM teams WHERE id=@id`

	var t model.Team
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id}).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		return nil, fmt.Errorf("error looking up team %d: %w", id, translateError(err))
	}
	return &t, nil
}

func (db *postgresDB) AddTournament(ctx context.Context, t *model.Tournament) error {
	const insert = `INSERT INTO tournaments (name, slug, published)
		VALUES (@name, @slug, @published) RETURNING id`
	const insertTeam = `INSERT INTO tournament_teams (tournament_id, team_id)
		VALUES (@tournamentID, @teamID)`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	args := pgx.NamedArgs{
		"name":      t.Name,
		"slug":      t.Slug,
		"published": t.Published,
	}
	if err := tx.QueryRow(ctx, insert, args).Scan(&t.ID); err != nil {
		return fmt.Errorf("error inserting tournament %s: %w", t.Slug, translateError(err))
	}

	for _, teamID := range t.TeamIDs {
		args := pgx.NamedArgs{
			"tournamentID": t.ID,
			"teamID":       teamID,
		}
		if _, err := tx.Exec(ctx, insertTeam, args); err != nil {
			return fmt.Errorf("error adding team %d to tournament: %w", teamID, translateError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting tournament: %w", translateError(err))
	}
	return nil
}

func (db *postgresDB) GetTournament(ctx context.Context, id int32) (*model.Tournament, error) {
	const query = `SELECT id, name, slug, published FROM tournaments WHERE id=@id`
	const teamsQuery = `SELECT team_id FROM tournament_teams WHERE tournament_id=@id ORDER BY team_id`

	args := pgx.NamedArgs{"id": id}

	var t model.Tournament
	err := db.pool.QueryRow(ctx, query, args).Scan(&t.ID, &t.Name, &t.Slug, &t.Published)
	if err != nil {
		return nil, fmt.Errorf("error looking up tournament %d: %w", id, translateError(err))
	}

	rows, err := db.pool.Query(ctx, teamsQuery, args)
	if err != nil {
		return nil, fmt.Errorf("error querying tournament teams: %w", err)
	}
	t.TeamIDs, err = pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("error scanning tournament teams: %w", err)
	}

	return &t, nil
}
