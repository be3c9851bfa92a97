package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mww/fantasy_predictions/model"
)

func (db *postgresDB) AddLeague(ctx context.Context, l *model.League, ownerID int32) error {
	const insert = `INSERT INTO leagues (name, slug, tournament_id, created)
		VALUES (@name, @slug, @tournamentID, @created) RETURNING id`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := db.clock.Now().UTC()
	args := pgx.NamedArgs{
		"name":         l.Name,
		"slug":         l.Slug,
		"tournamentID": l.TournamentID,
		"created":      timestamptz(now),
	}
	if err := tx.QueryRow(ctx, insert, args).Scan(&l.ID); err != nil {
		return fmt.Errorf("error inserting league %s: %w", l.Slug, translateError(err))
	}

	owner := model.LeagueMember{
		UserID:     ownerID,
		IsOwner:    true,
		DateJoined: now,
		Origin:     model.JoinCreated,
	}
	if err := insertLeagueMember(ctx, tx, l.ID, &owner); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting league: %w", translateError(err))
	}

	l.Created = now
	l.Members = []model.LeagueMember{owner}
	return nil
}

func (db *postgresDB) AddLeagueMember(ctx context.Context, leagueID int32, m *model.LeagueMember) error {
	if m.DateJoined.IsZero() {
		m.DateJoined = db.clock.Now().UTC()
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertLeagueMember(ctx, tx, leagueID, m); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertLeagueMember(ctx context.Context, tx pgx.Tx, leagueID int32, m *model.LeagueMember) error {
	const insert = `INSERT INTO league_members (league_id, user_id, is_owner, date_joined, origin)
		VALUES (@leagueID, @userID, @isOwner, @dateJoined, @origin)`

	args := pgx.NamedArgs{
		"leagueID":   leagueID,
		"userID":     m.UserID,
		"isOwner":    m.IsOwner,
		"dateJoined": timestamptz(m.DateJoined),
		"origin":     &DBJoinOrigin{origin: m.Origin},
	}
	if _, err := tx.Exec(ctx, insert, args); err != nil {
		return fmt.Errorf("error adding user %d to league %d: %w", m.UserID, leagueID, translateError(err))
	}
	return nil
}

func (db *postgresDB) GetLeague(ctx context.Context, id int32) (*model.League, error) {
	const query = `SELECT id, name, slug, tournament_id, created FROM leagues WHERE id=@id`
	const membersQuery = `SELECT lm.user_id, u.username, lm.is_owner, lm.date_joined, lm.origin
		FROM league_members AS lm INNER JOIN users AS u ON lm.user_id=u.id
		WHERE lm.league_id=@id
		ORDER BY lm.date_joined, lm.user_id`

	args := pgx.NamedArgs{"id": id}

	var l model.League
	var created pgtype.Timestamptz
	err := db.pool.QueryRow(ctx, query, args).Scan(&l.ID, &l.Name, &l.Slug, &l.TournamentID, &created)
	if err != nil {
		return nil, fmt.Errorf("error looking up league %d: %w", id, translateError(err))
	}
	l.Created = created.Time

	rows, err := db.pool.Query(ctx, membersQuery, args)
	if err != nil {
		return nil, fmt.Errorf("error querying league members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.LeagueMember
		var joined pgtype.Timestamptz
		var origin DBJoinOrigin
		if err := rows.Scan(&m.UserID, &m.Username, &m.IsOwner, &joined, &origin); err != nil {
			return nil, fmt.Errorf("error scanning league member: %w", err)
		}
		m.DateJoined = joined.Time
		m.Origin = origin.origin
		l.Members = append(l.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with rows: %w", err)
	}

	return &l, nil
}
