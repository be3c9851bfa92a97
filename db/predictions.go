package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mww/fantasy_predictions/model"
)

const predictionColumns = `id, user_id, match_id, home_goals, away_goals, trend, starred, score`

func (db *postgresDB) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	const insert = `INSERT INTO predictions (user_id, match_id, home_goals, away_goals, trend, starred, updated)
		VALUES (@userID, @matchID, @homeGoals, @awayGoals, @trend, @starred, @updated)
		RETURNING id, score`

	return db.writePrediction(ctx, p, insert)
}

func (db *postgresDB) SavePrediction(ctx context.Context, p *model.Prediction) error {
	const upsert = `INSERT INTO predictions (user_id, match_id, home_goals, away_goals, trend, starred, updated)
		VALUES (@userID, @matchID, @homeGoals, @awayGoals, @trend, @starred, @updated)
		ON CONFLICT (user_id, match_id) DO UPDATE
		SET home_goals=EXCLUDED.home_goals,
			away_goals=EXCLUDED.away_goals,
			trend=EXCLUDED.trend,
			starred=EXCLUDED.starred,
			updated=EXCLUDED.updated
		RETURNING id, score`

	return db.writePrediction(ctx, p, upsert)
}

// writePrediction runs the insert while holding a share lock on the match, so
// a prediction can't slip in while the match is being finalized.
func (db *postgresDB) writePrediction(ctx context.Context, p *model.Prediction, query string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdateTrend()

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockOpenMatch(ctx, tx, p.MatchID); err != nil {
		return err
	}

	args := pgx.NamedArgs{
		"userID":    p.UserID,
		"matchID":   p.MatchID,
		"homeGoals": p.HomeGoals,
		"awayGoals": p.AwayGoals,
		"trend":     &DBTrend{trend: p.Trend},
		"starred":   p.Starred,
		"updated":   timestamptz(db.clock.Now()),
	}
	if err := tx.QueryRow(ctx, query, args).Scan(&p.ID, &p.Score); err != nil {
		return fmt.Errorf("error saving prediction of user %d for match %d: %w", p.UserID, p.MatchID, translateError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting prediction: %w", translateError(err))
	}
	return nil
}

func lockOpenMatch(ctx context.Context, tx pgx.Tx, matchID int32) error {
	const query = `SELECT home_goals IS NOT NULL FROM matches WHERE id=@id FOR SHARE`

	var finalized bool
	if err := tx.QueryRow(ctx, query, pgx.NamedArgs{"id": matchID}).Scan(&finalized); err != nil {
		return fmt.Errorf("error looking up match %d: %w", matchID, translateError(err))
	}
	if finalized {
		return model.ErrPredictionClosed
	}
	return nil
}

func (db *postgresDB) GetPrediction(ctx context.Context, userID, matchID int32) (*model.Prediction, error) {
	const query = `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id=@userID AND match_id=@matchID`

	args := pgx.NamedArgs{
		"userID":  userID,
		"matchID": matchID,
	}
	p, err := scanPrediction(db.pool.QueryRow(ctx, query, args))
	if err != nil {
		return nil, fmt.Errorf("error looking up prediction of user %d for match %d: %w", userID, matchID, translateError(err))
	}
	return p, nil
}

func (db *postgresDB) GetMatchPredictions(ctx context.Context, matchID int32) ([]model.Prediction, error) {
	const query = `SELECT ` + predictionColumns + ` FROM predictions WHERE match_id=@matchID ORDER BY id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"matchID": matchID})
	if err != nil {
		return nil, fmt.Errorf("error querying predictions: %w", err)
	}
	defer rows.Close()

	results := make([]model.Prediction, 0, 16)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning prediction: %w", err)
		}
		results = append(results, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with rows: %w", err)
	}
	return results, nil
}

func scanPrediction(row pgx.Row) (*model.Prediction, error) {
	var p model.Prediction
	var trend DBTrend
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.MatchID,
		&p.HomeGoals,
		&p.AwayGoals,
		&trend,
		&p.Starred,
		&p.Score)
	if err != nil {
		return nil, err
	}
	p.Trend = trend.trend
	return &p, nil
}
