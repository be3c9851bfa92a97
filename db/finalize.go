package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/mww/fantasy_predictions/model"
)

func (db *postgresDB) FinalizeMatch(ctx context.Context, matchID, homeGoals, awayGoals int32, rules model.ScoringRules) (*model.Finalization, error) {
	const lockMatch = `SELECT ` + matchColumns + ` FROM matches WHERE id=@id FOR UPDATE`
	const update = `UPDATE matches SET home_goals=@homeGoals, away_goals=@awayGoals WHERE id=@id`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	m, err := scanMatch(tx.QueryRow(ctx, lockMatch, pgx.NamedArgs{"id": matchID}))
	if err != nil {
		return nil, fmt.Errorf("error locking match %d: %w", matchID, translateError(err))
	}

	m.HomeGoals = model.Goals(homeGoals)
	m.AwayGoals = model.Goals(awayGoals)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"id":        matchID,
		"homeGoals": homeGoals,
		"awayGoals": awayGoals,
	}
	if _, err := tx.Exec(ctx, update, args); err != nil {
		return nil, fmt.Errorf("error saving result of match %d: %w", matchID, translateError(err))
	}

	scored, err := scorePredictions(ctx, tx, m, rules)
	if err != nil {
		return nil, err
	}

	stats, err := syncTeamStats(ctx, tx, m.TournamentID, []int32{m.HomeID, m.AwayID}, rules)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error commiting result of match %d: %w", matchID, translateError(err))
	}

	return &model.Finalization{
		Match:     *m,
		Scored:    scored,
		HomeStats: stats[m.HomeID],
		AwayStats: stats[m.AwayID],
	}, nil
}

func (db *postgresDB) ResyncTeamStats(ctx context.Context, teamID, tournamentID int32, rules model.ScoringRules) (*model.TeamStats, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stats, err := syncTeamStats(ctx, tx, tournamentID, []int32{teamID}, rules)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error commiting team stats: %w", translateError(err))
	}

	s := stats[teamID]
	return &s, nil
}

// scorePredictions recomputes the score of every prediction of a finalized
// match. All updates are sent as a single batch on the open transaction.
func scorePredictions(ctx context.Context, tx pgx.Tx, m *model.Match, rules model.ScoringRules) (int, error) {
	const query = `SELECT ` + predictionColumns + ` FROM predictions WHERE match_id=@matchID ORDER BY id FOR UPDATE`
	const update = `UPDATE predictions SET score=$1 WHERE id=$2`

	rows, err := tx.Query(ctx, query, pgx.NamedArgs{"matchID": m.ID})
	if err != nil {
		return 0, fmt.Errorf("error locking predictions of match %d: %w", m.ID, translateError(err))
	}
	predictions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Prediction, error) {
		p, err := scanPrediction(row)
		if err != nil {
			return model.Prediction{}, err
		}
		return *p, nil
	})
	if err != nil {
		return 0, fmt.Errorf("error scanning predictions of match %d: %w", m.ID, translateError(err))
	}

	if len(predictions) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range predictions {
		score := rules.PredictionScore(&predictions[i], *m.HomeGoals, *m.AwayGoals)
		batch.Queue(update, score, predictions[i].ID)
	}

	results := tx.SendBatch(ctx, batch)
	for _, p := range predictions {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("error scoring prediction %d: %w", p.ID, translateError(err))
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("error closing score batch: %w", translateError(err))
	}

	return len(predictions), nil
}

// syncTeamStats rebuilds the stats of the given teams from their finalized
// matches. The stats rows are created if needed and locked in team id order
// before any match is read, so two finalizations sharing a team run one
// after the other and the second one sees the result of the first.
func syncTeamStats(ctx context.Context, tx pgx.Tx, tournamentID int32, teamIDs []int32, rules model.ScoringRules) (map[int32]model.TeamStats, error) {
	const ensure = `INSERT INTO team_stats (team_id, tournament_id) VALUES (@teamID, @tournamentID)
		ON CONFLICT (team_id, tournament_id) DO NOTHING`
	const lock = `SELECT team_id FROM team_stats
		WHERE tournament_id=@tournamentID AND team_id = ANY(@teamIDs)
		ORDER BY team_id FOR UPDATE`
	const update = `UPDATE team_stats SET won=@won, tie=@tie, lost=@lost, points=@points
		WHERE team_id=@teamID AND tournament_id=@tournamentID`

	ids := slices.Clone(teamIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		args := pgx.NamedArgs{
			"teamID":       id,
			"tournamentID": tournamentID,
		}
		if _, err := tx.Exec(ctx, ensure, args); err != nil {
			return nil, fmt.Errorf("error creating stats for team %d: %w", id, translateError(err))
		}
	}

	rows, err := tx.Query(ctx, lock, pgx.NamedArgs{"tournamentID": tournamentID, "teamIDs": ids})
	if err != nil {
		return nil, fmt.Errorf("error locking team stats: %w", translateError(err))
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("error locking team stats: %w", translateError(err))
	}
	if len(locked) != len(ids) {
		return nil, fmt.Errorf("%w: expected %d team stats rows, locked %d", model.ErrConcurrentUpdate, len(ids), len(locked))
	}

	result := make(map[int32]model.TeamStats, len(ids))
	for _, id := range ids {
		matches, err := finalizedMatches(ctx, tx, id, tournamentID)
		if err != nil {
			return nil, err
		}

		stats := rules.TeamRecord(id, tournamentID, matches)
		args := pgx.NamedArgs{
			"teamID":       id,
			"tournamentID": tournamentID,
			"won":          stats.Won,
			"tie":          stats.Tie,
			"lost":         stats.Lost,
			"points":       stats.Points,
		}
		if _, err := tx.Exec(ctx, update, args); err != nil {
			return nil, fmt.Errorf("error saving stats for team %d: %w", id, translateError(err))
		}
		result[id] = stats
	}

	return result, nil
}

func finalizedMatches(ctx context.Context, tx pgx.Tx, teamID, tournamentID int32) ([]model.Match, error) {
	const query = `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id=@tournamentID
			AND (home_id=@teamID OR away_id=@teamID)
			AND home_goals IS NOT NULL AND away_goals IS NOT NULL`

	args := pgx.NamedArgs{
		"teamID":       teamID,
		"tournamentID": tournamentID,
	}
	rows, err := tx.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying matches of team %d: %w", teamID, translateError(err))
	}
	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Match, error) {
		m, err := scanMatch(row)
		if err != nil {
			return model.Match{}, err
		}
		return *m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning matches of team %d: %w", teamID, translateError(err))
	}
	return matches, nil
}

func (db *postgresDB) GetTeamStats(ctx context.Context, teamID, tournamentID int32) (*model.TeamStats, error) {
	const query = `SELECT s.team_id, s.tournament_id, t.name, s.won, s.tie, s.lost, s.points
		FROM team_stats AS s INNER JOIN teams AS t ON s.team_id=t.id
		WHERE s.team_id=@teamID AND s.tournament_id=@tournamentID`

	args := pgx.NamedArgs{
		"teamID":       teamID,
		"tournamentID": tournamentID,
	}
	s, err := scanTeamStats(db.pool.QueryRow(ctx, query, args))
	if err != nil {
		return nil, fmt.Errorf("error looking up stats of team %d: %w", teamID, translateError(err))
	}
	return s, nil
}

func (db *postgresDB) GetStandings(ctx context.Context, tournamentID int32) ([]model.TeamStats, error) {
	const query = `SELECT s.team_id, s.tournament_id, t.name, s.won, s.tie, s.lost, s.points
		FROM team_stats AS s INNER JOIN teams AS t ON s.team_id=t.id
		WHERE s.tournament_id=@tournamentID
		ORDER BY s.points DESC, s.team_id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"tournamentID": tournamentID})
	if err != nil {
		return nil, fmt.Errorf("error querying standings: %w", err)
	}
	defer rows.Close()

	results := make([]model.TeamStats, 0, 16)
	for rows.Next() {
		s, err := scanTeamStats(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning team stats: %w", err)
		}
		results = append(results, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with rows: %w", err)
	}
	return results, nil
}

func scanTeamStats(row pgx.Row) (*model.TeamStats, error) {
	var s model.TeamStats
	err := row.Scan(&s.TeamID, &s.TournamentID, &s.TeamName, &s.Won, &s.Tie, &s.Lost, &s.Points)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
