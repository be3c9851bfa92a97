package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/mww/fantasy_predictions/model"
)

func (c *controller) AddLeague(ctx context.Context, name string, tournamentID, ownerID int32) (*model.League, error) {
	name = strings.TrimSpace(name)
	l := &model.League{
		Name:         name,
		Slug:         model.Slugify(name),
		TournamentID: tournamentID,
		Created:      c.clock.Now().UTC(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	if err := c.db.AddLeague(ctx, l, ownerID); err != nil {
		return nil, err
	}
	return c.db.GetLeague(ctx, l.ID)
}

func (c *controller) JoinLeague(ctx context.Context, leagueID, userID int32, origin model.JoinOrigin) (*model.League, error) {
	if origin == "" {
		origin = model.JoinDirect
	}
	if origin == model.JoinCreated {
		return nil, model.Invalid("only the owner can join a league as its creator")
	}

	l, err := c.db.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if l.IsMember(userID) {
		return nil, fmt.Errorf("%w: user %d is already a member of league %s", model.ErrDuplicateEntry, userID, l.Slug)
	}

	m := &model.LeagueMember{
		UserID:     userID,
		DateJoined: c.clock.Now().UTC(),
		Origin:     origin,
	}
	if err := c.db.AddLeagueMember(ctx, leagueID, m); err != nil {
		return nil, err
	}
	return c.db.GetLeague(ctx, leagueID)
}

func (c *controller) GetLeague(ctx context.Context, id int32) (*model.League, error) {
	return c.db.GetLeague(ctx, id)
}
