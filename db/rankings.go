package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mww/fantasy_predictions/model"
)

func (db *postgresDB) TournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error) {
	const query = `SELECT u.id, u.username, COALESCE(SUM(p.score), 0) AS total, COUNT(p.id)
		FROM predictions AS p
			INNER JOIN matches AS m ON p.match_id=m.id
			INNER JOIN users AS u ON p.user_id=u.id
		WHERE m.tournament_id=@tournamentID
		GROUP BY u.id, u.username
		ORDER BY total DESC, u.username, u.id`

	return db.queryRanking(ctx, query, pgx.NamedArgs{"tournamentID": tournamentID})
}

// LeagueRanking is the tournament ranking of the league restricted to its
// members. Members without predictions are not listed.
func (db *postgresDB) LeagueRanking(ctx context.Context, leagueID int32) ([]model.RankingEntry, error) {
	const exists = `SELECT id FROM leagues WHERE id=@leagueID`
	const query = `SELECT u.id, u.username, COALESCE(SUM(p.score), 0) AS total, COUNT(p.id)
		FROM leagues AS l
			INNER JOIN league_members AS lm ON lm.league_id=l.id
			INNER JOIN users AS u ON lm.user_id=u.id
			INNER JOIN predictions AS p ON p.user_id=u.id
			INNER JOIN matches AS m ON p.match_id=m.id AND m.tournament_id=l.tournament_id
		WHERE l.id=@leagueID
		GROUP BY u.id, u.username
		ORDER BY total DESC, u.username, u.id`

	args := pgx.NamedArgs{"leagueID": leagueID}

	var id int32
	if err := db.pool.QueryRow(ctx, exists, args).Scan(&id); err != nil {
		return nil, fmt.Errorf("error looking up league %d: %w", leagueID, translateError(err))
	}
	return db.queryRanking(ctx, query, args)
}

func (db *postgresDB) queryRanking(ctx context.Context, query string, args pgx.NamedArgs) ([]model.RankingEntry, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying ranking: %w", translateError(err))
	}
	defer rows.Close()

	results := make([]model.RankingEntry, 0, 16)
	for rows.Next() {
		var e model.RankingEntry
		var total, count int64
		if err := rows.Scan(&e.UserID, &e.Username, &total, &count); err != nil {
			return nil, fmt.Errorf("error scanning ranking entry: %w", err)
		}
		e.Total = int32(total)
		e.Count = int32(count)
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with rows: %w", err)
	}
	return results, nil
}

// UserStats counts the predictions of the user that earned points in the
// tournament. Exacts are the ones that also matched the final score.
func (db *postgresDB) UserStats(ctx context.Context, userID, tournamentID int32) (*model.UserStats, error) {
	const query = `SELECT COUNT(p.id),
			COALESCE(SUM(p.score), 0),
			COALESCE(SUM(CASE WHEN p.home_goals=m.home_goals AND p.away_goals=m.away_goals THEN 1 ELSE 0 END), 0)
		FROM predictions AS p INNER JOIN matches AS m ON p.match_id=m.id
		WHERE p.user_id=@userID AND m.tournament_id=@tournamentID AND p.score > 0`

	args := pgx.NamedArgs{
		"userID":       userID,
		"tournamentID": tournamentID,
	}

	var winners, score, exacts int64
	if err := db.pool.QueryRow(ctx, query, args).Scan(&winners, &score, &exacts); err != nil {
		return nil, fmt.Errorf("error querying stats of user %d: %w", userID, translateError(err))
	}
	return &model.UserStats{
		Winners: int32(winners),
		Score:   int32(score),
		Exacts:  int32(exacts),
	}, nil
}
