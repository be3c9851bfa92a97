package mockdb

import (
	"context"
	"time"

	"github.com/mww/fantasy_predictions/model"
	"github.com/stretchr/testify/mock"
)

type DB struct {
	mock.Mock
}

func (db *DB) AddTeam(ctx context.Context, t *model.Team) error {
	args := db.Called(ctx, t)
	return args.Error(0)
}

func (db *DB) GetTeam(ctx context.Context, id int32) (*model.Team, error) {
	args := db.Called(ctx, id)

	var t *model.Team
	if args.Get(0) != nil {
		t = args.Get(0).(*model.Team)
	}
	return t, args.Error(1)
}

func (db *DB) AddTournament(ctx context.Context, t *model.Tournament) error {
	args := db.Called(ctx, t)
	return args.Error(0)
}

func (db *DB) GetTournament(ctx context.Context, id int32) (*model.Tournament, error) {
	args := db.Called(ctx, id)

	var t *model.Tournament
	if args.Get(0) != nil {
		t = args.Get(0).(*model.Tournament)
	}
	return t, args.Error(1)
}

func (db *DB) AddMatch(ctx context.Context, m *model.Match) error {
	args := db.Called(ctx, m)
	return args.Error(0)
}

func (db *DB) GetMatch(ctx context.Context, id int32) (*model.Match, error) {
	args := db.Called(ctx, id)

	var m *model.Match
	if args.Get(0) != nil {
		m = args.Get(0).(*model.Match)
	}
	return m, args.Error(1)
}

func (db *DB) MatchesBetween(ctx context.Context, tournamentID int32, from, until time.Time) ([]model.Match, error) {
	args := db.Called(ctx, tournamentID, from, until)
	return matches(args)
}

func (db *DB) LatestMatches(ctx context.Context, teamID, tournamentID int32, until time.Time) ([]model.Match, error) {
	args := db.Called(ctx, teamID, tournamentID, until)
	return matches(args)
}

func matches(args mock.Arguments) ([]model.Match, error) {
	var r []model.Match
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Match)
	}
	return r, args.Error(1)
}

func (db *DB) AddUser(ctx context.Context, u *model.User) error {
	args := db.Called(ctx, u)
	return args.Error(0)
}

func (db *DB) GetUser(ctx context.Context, id int32) (*model.User, error) {
	args := db.Called(ctx, id)

	var u *model.User
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}
	return u, args.Error(1)
}

func (db *DB) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	args := db.Called(ctx, p)
	return args.Error(0)
}

func (db *DB) SavePrediction(ctx context.Context, p *model.Prediction) error {
	args := db.Called(ctx, p)
	return args.Error(0)
}

func (db *DB) GetPrediction(ctx context.Context, userID, matchID int32) (*model.Prediction, error) {
	args := db.Called(ctx, userID, matchID)

	var p *model.Prediction
	if args.Get(0) != nil {
		p = args.Get(0).(*model.Prediction)
	}
	return p, args.Error(1)
}

func (db *DB) GetMatchPredictions(ctx context.Context, matchID int32) ([]model.Prediction, error) {
	args := db.Called(ctx, matchID)

	var r []model.Prediction
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Prediction)
	}
	return r, args.Error(1)
}

func (db *DB) FinalizeMatch(ctx context.Context, matchID, homeGoals, awayGoals int32, rules model.ScoringRules) (*model.Finalization, error) {
	args := db.Called(ctx, matchID, homeGoals, awayGoals, rules)

	var f *model.Finalization
	if args.Get(0) != nil {
		f = args.Get(0).(*model.Finalization)
	}
	return f, args.Error(1)
}

func (db *DB) ResyncTeamStats(ctx context.Context, teamID, tournamentID int32, rules model.ScoringRules) (*model.TeamStats, error) {
	args := db.Called(ctx, teamID, tournamentID, rules)
	return teamStats(args)
}

func (db *DB) GetTeamStats(ctx context.Context, teamID, tournamentID int32) (*model.TeamStats, error) {
	args := db.Called(ctx, teamID, tournamentID)
	return teamStats(args)
}

func teamStats(args mock.Arguments) (*model.TeamStats, error) {
	var s *model.TeamStats
	if args.Get(0) != nil {
		s = args.Get(0).(*model.TeamStats)
	}
	return s, args.Error(1)
}

func (db *DB) GetStandings(ctx context.Context, tournamentID int32) ([]model.TeamStats, error) {
	args := db.Called(ctx, tournamentID)

	var r []model.TeamStats
	if args.Get(0) != nil {
		r = args.Get(0).([]model.TeamStats)
	}
	return r, args.Error(1)
}

func (db *DB) TournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error) {
	args := db.Called(ctx, tournamentID)
	return ranking(args)
}

func (db *DB) LeagueRanking(ctx context.Context, leagueID int32) ([]model.RankingEntry, error) {
	args := db.Called(ctx, leagueID)
	return ranking(args)
}

func ranking(args mock.Arguments) ([]model.RankingEntry, error) {
	var r []model.RankingEntry
	if args.Get(0) != nil {
		r = args.Get(0).([]model.RankingEntry)
	}
	return r, args.Error(1)
}

func (db *DB) UserStats(ctx context.Context, userID, tournamentID int32) (*model.UserStats, error) {
	args := db.Called(ctx, userID, tournamentID)

	var s *model.UserStats
	if args.Get(0) != nil {
		s = args.Get(0).(*model.UserStats)
	}
	return s, args.Error(1)
}

func (db *DB) AddLeague(ctx context.Context, l *model.League, ownerID int32) error {
	args := db.Called(ctx, l, ownerID)
	return args.Error(0)
}

func (db *DB) GetLeague(ctx context.Context, id int32) (*model.League, error) {
	args := db.Called(ctx, id)

	var l *model.League
	if args.Get(0) != nil {
		l = args.Get(0).(*model.League)
	}
	return l, args.Error(1)
}

func (db *DB) AddLeagueMember(ctx context.Context, leagueID int32, m *model.LeagueMember) error {
	args := db.Called(ctx, leagueID, m)
	return args.Error(0)
}

func (db *DB) Close() {
	db.Called()
}
