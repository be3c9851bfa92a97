package controller

import (
	"context"
	"fmt"

	"github.com/mww/fantasy_predictions/model"
)

func (c *controller) CreatePrediction(ctx context.Context, userID, matchID int32, homeGoals, awayGoals *int32, starred bool) (*model.Prediction, error) {
	p, err := c.newPrediction(ctx, userID, matchID, homeGoals, awayGoals, starred)
	if err != nil {
		return nil, err
	}

	if err := c.db.CreatePrediction(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *controller) SavePrediction(ctx context.Context, userID, matchID int32, homeGoals, awayGoals *int32, starred bool) (*model.Prediction, error) {
	p, err := c.newPrediction(ctx, userID, matchID, homeGoals, awayGoals, starred)
	if err != nil {
		return nil, err
	}

	if err := c.db.SavePrediction(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// newPrediction validates the input and checks the match still accepts
// predictions. The db layer repeats the finalized check under a row lock.
func (c *controller) newPrediction(ctx context.Context, userID, matchID int32, homeGoals, awayGoals *int32, starred bool) (*model.Prediction, error) {
	p := &model.Prediction{
		UserID:    userID,
		MatchID:   matchID,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		Starred:   starred,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m, err := c.db.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("error looking up match: %w", err)
	}
	if m.IsFinalized() {
		return nil, model.ErrPredictionClosed
	}
	if d := m.Deadline(c.opts.HoursToDeadline); d != nil && !c.clock.Now().Before(*d) {
		return nil, model.ErrPredictionClosed
	}

	p.UpdateTrend()
	return p, nil
}
