package controller

import (
	"context"
	"fmt"

	"github.com/mww/fantasy_predictions/model"
	"github.com/rs/zerolog/log"
)

// Get the ranking of every user that predicted a match of the tournament.
func (c *controller) GetTournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error) {
	return c.ranking(ctx, fmt.Sprintf("tournament:%d", tournamentID), func(ctx context.Context) ([]model.RankingEntry, error) {
		return c.db.TournamentRanking(ctx, tournamentID)
	})
}

// Get the ranking restricted to the members of a league.
func (c *controller) GetLeagueRanking(ctx context.Context, leagueID int32) ([]model.RankingEntry, error) {
	return c.ranking(ctx, fmt.Sprintf("league:%d", leagueID), func(ctx context.Context) ([]model.RankingEntry, error) {
		return c.db.LeagueRanking(ctx, leagueID)
	})
}

func (c *controller) GetUserStats(ctx context.Context, userID, tournamentID int32) (*model.UserStats, error) {
	return c.db.UserStats(ctx, userID, tournamentID)
}

// ranking shares one read between concurrent callers of the same key. The
// key carries the finalization generation, so a read started before a
// finalization committed is never handed to a caller that arrives after it.
// The shared read is detached from the caller that started it; every caller
// still stops waiting when its own context is done.
func (c *controller) ranking(ctx context.Context, key string, fn func(ctx context.Context) ([]model.RankingEntry, error)) ([]model.RankingEntry, error) {
	key = fmt.Sprintf("%s@%d", key, c.finalized.Load())
	shared := context.WithoutCancel(ctx)

	ch := c.rankings.DoChan(key, func() (any, error) {
		return fn(shared)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug().Str("key", key).Msg("ranking read shared with a concurrent request")
		}

		// callers own their copy, never hand out the shared slice
		entries := append([]model.RankingEntry(nil), res.Val.([]model.RankingEntry)...)
		model.SortRanking(entries)
		return entries, nil
	}
}
