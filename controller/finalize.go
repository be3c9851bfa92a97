package controller

import (
	"context"
	"time"

	"github.com/mww/fantasy_predictions/model"
	"github.com/rs/zerolog/log"
)

func (c *controller) FinalizeMatch(ctx context.Context, matchID, homeGoals, awayGoals int32) (*model.Match, error) {
	if homeGoals < 0 || awayGoals < 0 {
		return nil, model.Invalid("goals must not be negative, got %d-%d", homeGoals, awayGoals)
	}

	start := c.clock.Now()
	f, err := c.db.FinalizeMatch(ctx, matchID, homeGoals, awayGoals, c.opts.Rules)
	if err != nil {
		log.Error().Err(err).Int32("match_id", matchID).Msg("error finalizing match")
		return nil, err
	}
	c.finalized.Add(1)

	log.Info().
		Int32("match_id", matchID).
		Str("result", f.Match.Result()).
		Int("scored", f.Scored).
		Int32("home_points", f.HomeStats.Points).
		Int32("away_points", f.AwayStats.Points).
		Dur("duration", c.clock.Now().Sub(start).Round(time.Millisecond)).
		Msg("match finalized")

	return &f.Match, nil
}
