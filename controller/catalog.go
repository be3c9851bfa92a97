package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mww/fantasy_predictions/model"
)

func (c *controller) AddTeam(ctx context.Context, name string) (*model.Team, error) {
	name = strings.TrimSpace(name)
	t := &model.Team{Name: name, Slug: model.Slugify(name)}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := c.db.AddTeam(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *controller) GetTeam(ctx context.Context, id int32) (*model.Team, error) {
	return c.db.GetTeam(ctx, id)
}

func (c *controller) LatestMatches(ctx context.Context, teamID, tournamentID int32) ([]model.Match, error) {
	return c.db.LatestMatches(ctx, teamID, tournamentID, c.clock.Now())
}

func (c *controller) AddTournament(ctx context.Context, name string, published bool, teamIDs []int32) (*model.Tournament, error) {
	name = strings.TrimSpace(name)
	t := &model.Tournament{
		Name:      name,
		Slug:      model.Slugify(name),
		Published: published,
		TeamIDs:   teamIDs,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := c.db.AddTournament(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *controller) GetTournament(ctx context.Context, id int32) (*model.Tournament, error) {
	return c.db.GetTournament(ctx, id)
}

func (c *controller) NextMatches(ctx context.Context, tournamentID int32, days int) ([]model.Match, error) {
	if days <= 0 {
		days = c.opts.NextMatchesDays
	}
	now := c.clock.Now()
	until := now.Add(time.Duration(days) * 24 * time.Hour)
	return c.db.MatchesBetween(ctx, tournamentID, now, until)
}

func (c *controller) GetTeamStandings(ctx context.Context, tournamentID int32) ([]model.TeamStats, error) {
	if _, err := c.db.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	standings, err := c.db.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	model.SortStandings(standings)
	return standings, nil
}

func (c *controller) ResyncTeamStats(ctx context.Context, teamID, tournamentID int32) (*model.TeamStats, error) {
	return c.db.ResyncTeamStats(ctx, teamID, tournamentID, c.opts.Rules)
}

func (c *controller) AddMatch(ctx context.Context, m *model.Match) (*model.Match, error) {
	if m.HomeGoals != nil || m.AwayGoals != nil {
		return nil, model.Invalid("new matches can't have a result, finalize the match instead")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	t, err := c.db.GetTournament(ctx, m.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("error looking up tournament: %w", err)
	}
	for _, id := range []int32{m.HomeID, m.AwayID} {
		if !t.HasTeam(id) {
			return nil, model.Invalid("team %d is not registered in tournament %s", id, t.Slug)
		}
	}

	if err := c.db.AddMatch(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *controller) GetMatch(ctx context.Context, id int32) (*model.Match, error) {
	return c.db.GetMatch(ctx, id)
}

func (c *controller) AddUser(ctx context.Context, username, email string) (*model.User, error) {
	u := &model.User{
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		InviteKey: model.NewInviteKey(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := c.db.AddUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *controller) GetUser(ctx context.Context, id int32) (*model.User, error) {
	return c.db.GetUser(ctx, id)
}
