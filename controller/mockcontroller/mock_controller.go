package mockcontroller

import (
	"context"

	"github.com/mww/fantasy_predictions/model"
	"github.com/stretchr/testify/mock"
)

type C struct {
	mock.Mock
}

func (c *C) AddTeam(ctx context.Context, name string) (*model.Team, error) {
	args := c.Called(ctx, name)

	var res *model.Team
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Team)
	}

	return res, args.Error(1)
}

func (c *C) GetTeam(ctx context.Context, id int32) (*model.Team, error) {
	args := c.Called(ctx, id)

	var res *model.Team
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Team)
	}

	return res, args.Error(1)
}

func (c *C) LatestMatches(ctx context.Context, teamID, tournamentID int32) ([]model.Match, error) {
	args := c.Called(ctx, teamID, tournamentID)

	var res []model.Match
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Match)
	}

	return res, args.Error(1)
}

func (c *C) AddTournament(ctx context.Context, name string, published bool, teamIDs []int32) (*model.Tournament, error) {
	args := c.Called(ctx, name, published, teamIDs)

	var res *model.Tournament
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Tournament)
	}

	return res, args.Error(1)
}

func (c *C) GetTournament(ctx context.Context, id int32) (*model.Tournament, error) {
	args := c.Called(ctx, id)

	var res *model.Tournament
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Tournament)
	}

	return res, args.Error(1)
}

func (c *C) NextMatches(ctx context.Context, tournamentID int32, days int) ([]model.Match, error) {
	args := c.Called(ctx, tournamentID, days)

	var res []model.Match
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Match)
	}

	return res, args.Error(1)
}

func (c *C) GetTeamStandings(ctx context.Context, tournamentID int32) ([]model.TeamStats, error) {
	args := c.Called(ctx, tournamentID)

	var res []model.TeamStats
	if args.Get(0) != nil {
		res = args.Get(0).([]model.TeamStats)
	}

	return res, args.Error(1)
}

func (c *C) ResyncTeamStats(ctx context.Context, teamID, tournamentID int32) (*model.TeamStats, error) {
	args := c.Called(ctx, teamID, tournamentID)

	var res *model.TeamStats
	if args.Get(0) != nil {
		res = args.Get(0).(*model.TeamStats)
	}

	return res, args.Error(1)
}

func (c *C) AddMatch(ctx context.Context, m *model.Match) (*model.Match, error) {
	args := c.Called(ctx, m)

	var res *model.Match
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Match)
	}

	return res, args.Error(1)
}

func (c *C) GetMatch(ctx context.Context, id int32) (*model.Match, error) {
	args := c.Called(ctx, id)

	var res *model.Match
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Match)
	}

	return res, args.Error(1)
}

func (c *C) FinalizeMatch(ctx context.Context, matchID, homeGoals, awayGoals int32) (*model.Match, error) {
	args := c.Called(ctx, matchID, homeGoals, awayGoals)

	var res *model.Match
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Match)
	}

	return res, args.Error(1)
}

func (c *C) AddUser(ctx context.Context, username, email string) (*model.User, error) {
	args := c.Called(ctx, username, email)

	var res *model.User
	if args.Get(0) != nil {
		res = args.Get(0).(*model.User)
	}

	return res, args.Error(1)
}

func (c *C) GetUser(ctx context.Context, id int32) (*model.User, error) {
	args := c.Called(ctx, id)

	var res *model.User
	if args.Get(0) != nil {
		res = args.Get(0).(*model.User)
	}

	return res, args.Error(1)
}

func (c *C) CreatePrediction(ctx context.Context, userID, matchID int32, homeGoals, awayGoals *int32, starred bool) (*model.Prediction, error) {
	args := c.Called(ctx, userID, matchID, homeGoals, awayGoals, starred)

	var res *model.Prediction
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Prediction)
	}

	return res, args.Error(1)
}

func (c *C) SavePrediction(ctx context.Context, userID, matchID int32, homeGoals, awayGoals *int32, starred bool) (*model.Prediction, error) {
	args := c.Called(ctx, userID, matchID, homeGoals, awayGoals, starred)

	var res *model.Prediction
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Prediction)
	}

	return res, args.Error(1)
}

func (c *C) GetTournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error) {
	args := c.Called(ctx, tournamentID)

	var res []model.RankingEntry
	if args.Get(0) != nil {
		res = args.Get(0).([]model.RankingEntry)
	}

	return res, args.Error(1)
}

func (c *C) GetLeagueRanking(ctx context.Context, leagueID int32) ([]model.RankingEntry, error) {
	args := c.Called(ctx, leagueID)

	var res []model.RankingEntry
	if args.Get(0) != nil {
		res = args.Get(0).([]model.RankingEntry)
	}

	return res, args.Error(1)
}

func (c *C) GetUserStats(ctx context.Context, userID, tournamentID int32) (*model.UserStats, error) {
	args := c.Called(ctx, userID, tournamentID)

	var res *model.UserStats
	if args.Get(0) != nil {
		res = args.Get(0).(*model.UserStats)
	}

	return res, args.Error(1)
}

func (c *C) AddLeague(ctx context.Context, name string, tournamentID, ownerID int32) (*model.League, error) {
	args := c.Called(ctx, name, tournamentID, ownerID)

	var res *model.League
	if args.Get(0) != nil {
		res = args.Get(0).(*model.League)
	}

	return res, args.Error(1)
}

func (c *C) JoinLeague(ctx context.Context, leagueID, userID int32, origin model.JoinOrigin) (*model.League, error) {
	args := c.Called(ctx, leagueID, userID, origin)

	var res *model.League
	if args.Get(0) != nil {
		res = args.Get(0).(*model.League)
	}

	return res, args.Error(1)
}

func (c *C) GetLeague(ctx context.Context, id int32) (*model.League, error) {
	args := c.Called(ctx, id)

	var res *model.League
	if args.Get(0) != nil {
		res = args.Get(0).(*model.League)
	}

	return res, args.Error(1)
}
