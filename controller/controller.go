package controller

import (
	"context"
	"sync/atomic"

	"github.com/itbasis/go-clock"
	"github.com/mww/fantasy_predictions/db"
	"github.com/mww/fantasy_predictions/model"
	"golang.org/x/sync/singleflight"
)

// C encapsulates business logic without worrying about any web layers
type C interface {
	AddTeam(ctx context.Context, name string) (*model.Team, error)
	GetTeam(ctx context.Context, id int32) (*model.Team, error)
	// Matches the team already played, most recent first. Use tournamentID 0 for all tournaments.
	LatestMatches(ctx context.Context, teamID, tournamentID int32) ([]model.Match, error)

	AddTournament(ctx context.Context, name string, published bool, teamIDs []int32) (*model.Tournament, error)
	GetTournament(ctx context.Context, id int32) (*model.Tournament, error)
	// Matches starting in the next days. When days <= 0 the configured window is used.
	NextMatches(ctx context.Context, tournamentID int32, days int) ([]model.Match, error)
	GetTeamStandings(ctx context.Context, tournamentID int32) ([]model.TeamStats, error)
	ResyncTeamStats(ctx context.Context, teamID, tournamentID int32) (*model.TeamStats, error)

	// Schedules a new, unplayed match.
	AddMatch(ctx context.Context, m *model.Match) (*model.Match, error)
	GetMatch(ctx context.Context, id int32) (*model.Match, error)
	// Stores the final result and recomputes prediction scores and team stats.
	FinalizeMatch(ctx context.Context, matchID, homeGoals, awayGoals int32) (*model.Match, error)

	AddUser(ctx context.Context, username, email string) (*model.User, error)
	GetUser(ctx context.Context, id int32) (*model.User, error)

	// Creates a new prediction, failing with model.ErrDuplicateEntry if the user already has one.
	CreatePrediction(ctx context.Context, userID, matchID int32, homeGoals, awayGoals *int32, starred bool) (*model.Prediction, error)
	// Creates or updates the user's prediction.
	SavePrediction(ctx context.Context, userID, matchID int32, homeGoals, awayGoals *int32, starred bool) (*model.Prediction, error)

	GetTournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error)
	GetLeagueRanking(ctx context.Context, leagueID int32) ([]model.RankingEntry, error)
	GetUserStats(ctx context.Context, userID, tournamentID int32) (*model.UserStats, error)

	AddLeague(ctx context.Context, name string, tournamentID, ownerID int32) (*model.League, error)
	JoinLeague(ctx context.Context, leagueID, userID int32, origin model.JoinOrigin) (*model.League, error)
	GetLeague(ctx context.Context, id int32) (*model.League, error)
}

// Options are the game settings used by the controller.
type Options struct {
	Rules           model.ScoringRules
	HoursToDeadline int
	NextMatchesDays int
}

func DefaultOptions() Options {
	return Options{
		Rules:           model.DefaultScoringRules,
		HoursToDeadline: 1,
		NextMatchesDays: 7,
	}
}

type controller struct {
	clock clock.Clock
	db    db.DB
	opts  Options

	// collapses identical ranking reads that arrive at the same time
	rankings singleflight.Group
	// bumped after every committed finalization, part of the ranking keys
	finalized atomic.Int64
}

func New(clock clock.Clock, db db.DB, opts Options) (C, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.HoursToDeadline < 0 {
		return nil, model.Invalid("hours to deadline must not be negative, got %d", opts.HoursToDeadline)
	}
	if opts.NextMatchesDays <= 0 {
		return nil, model.Invalid("next matches days must be positive, got %d", opts.NextMatchesDays)
	}

	c := &controller{
		clock: clock,
		db:    db,
		opts:  opts,
	}
	return c, nil
}
