package db

import (
	"context"
	"time"

	"github.com/mww/fantasy_predictions/model"
)

// DB is the storage used by the controller. Derived values, prediction scores
// and team stats, can only be written through FinalizeMatch and
// ResyncTeamStats.
//
// Errors wrap the sentinels in the model package: model.ErrNotFound,
// model.ErrDuplicateEntry, model.ErrValidation and model.ErrConcurrentUpdate.
type DB interface {
	AddTeam(ctx context.Context, t *model.Team) error
	GetTeam(ctx context.Context, id int32) (*model.Team, error)

	// AddTournament stores the tournament and its registered teams.
	AddTournament(ctx context.Context, t *model.Tournament) error
	GetTournament(ctx context.Context, id int32) (*model.Tournament, error)

	AddMatch(ctx context.Context, m *model.Match) error
	GetMatch(ctx context.Context, id int32) (*model.Match, error)
	// Matches of a tournament starting in the [from, until] window, ordered by start time.
	MatchesBetween(ctx context.Context, tournamentID int32, from, until time.Time) ([]model.Match, error)
	// Matches the team played up to the given time, most recent first. A
	// tournamentID of 0 includes every tournament.
	LatestMatches(ctx context.Context, teamID, tournamentID int32, until time.Time) ([]model.Match, error)

	AddUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int32) (*model.User, error)

	// CreatePrediction fails with model.ErrDuplicateEntry if the user already
	// predicted the match.
	CreatePrediction(ctx context.Context, p *model.Prediction) error
	// SavePrediction creates the prediction or updates the goals and starred
	// flag of the existing one. The score is never written.
	SavePrediction(ctx context.Context, p *model.Prediction) error
	GetPrediction(ctx context.Context, userID, matchID int32) (*model.Prediction, error)
	GetMatchPredictions(ctx context.Context, matchID int32) ([]model.Prediction, error)

	// FinalizeMatch stores the result and runs the scoring and standings
	// cascade in a single transaction. Finalizing again overwrites the result
	// and recomputes everything.
	FinalizeMatch(ctx context.Context, matchID, homeGoals, awayGoals int32, rules model.ScoringRules) (*model.Finalization, error)
	ResyncTeamStats(ctx context.Context, teamID, tournamentID int32, rules model.ScoringRules) (*model.TeamStats, error)
	GetTeamStats(ctx context.Context, teamID, tournamentID int32) (*model.TeamStats, error)
	// Standings of a tournament ordered by points.
	GetStandings(ctx context.Context, tournamentID int32) ([]model.TeamStats, error)

	TournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error)
	LeagueRanking(ctx context.Context, leagueID int32) ([]model.RankingEntry, error)
	UserStats(ctx context.Context, userID, tournamentID int32) (*model.UserStats, error)

	// AddLeague stores the league together with its owner as first member.
	AddLeague(ctx context.Context, l *model.League, ownerID int32) error
	GetLeague(ctx context.Context, id int32) (*model.League, error)
	AddLeagueMember(ctx context.Context, leagueID int32, m *model.LeagueMember) error

	Close()
}
