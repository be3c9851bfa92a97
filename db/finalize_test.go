package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mww/fantasy_predictions/model"
)

func TestFinalizeMatch_scoresPredictions(t *testing.T) {
	forEachStore(t, func(t *testing.T, db DB) {
		ctx := context.Background()
		f := newFixture(t, db)
		dave := addUser(t, db, fmt.Sprintf("dave%d", nextID()))
		m := f.addMatch(t, db, f.teamX, f.teamY, kickoff)

		exact := predict(t, db, f.ana, m, 2, 1, false)
		trend := predict(t, db, f.bob, m, 3, 0, false)
		wrong := predict(t, db, f.carl, m, 1, 2, true)
		starred := predict(t, db, dave, m, 2, 1, true)

		rules := model.DefaultScoringRules
		res, err := db.FinalizeMatch(ctx, m.ID, 2, 1, rules)
		assertFatalf(t, err == nil, "error finalizing match: %v", err)
		assertEquals(t, "Scored", 4, res.Scored)
		assertEquals(t, "Result", "2-1", res.Match.Result())

		tests := map[string]struct {
			p        *model.Prediction
			expected int32
		}{
			"exact":   {p: exact, expected: rules.ExactPoints},
			"trend":   {p: trend, expected: rules.TrendPoints},
			"wrong":   {p: wrong, expected: 0},
			"starred": {p: starred, expected: rules.ExactPoints + rules.StarredBonus},
		}
		for name, tc := range tests {
			p, err := db.GetPrediction(ctx, tc.p.UserID, m.ID)
			assertFatalf(t, err == nil, "error getting prediction: %v", err)
			assertEquals(t, name, tc.expected, p.Score)
		}

		stored, err := db.GetMatch(ctx, m.ID)
		assertFatalf(t, err == nil, "error getting match: %v", err)
		assertEquals(t, "stored result", "2-1", stored.Result())

		// Finalizing again with the same result changes nothing.
		_, err = db.FinalizeMatch(ctx, m.ID, 2, 1, rules)
		assertFatalf(t, err == nil, "error finalizing match again: %v", err)
		for name, tc := range tests {
			p, err := db.GetPrediction(ctx, tc.p.UserID, m.ID)
			assertFatalf(t, err == nil, "error getting prediction: %v", err)
			assertEquals(t, name+" after rerun", tc.expected, p.Score)
		}

		// A corrected result overwrites the scores.
		res, err = db.FinalizeMatch(ctx, m.ID, 1, 2, rules)
		assertFatalf(t, err == nil, "error correcting match: %v", err)
		p, err := db.GetPrediction(ctx, wrong.UserID, m.ID)
		assertFatalf(t, err == nil, "error getting prediction: %v", err)
		assertEquals(t, "corrected starred exact", rules.ExactPoints+rules.StarredBonus, p.Score)
		p, err = db.GetPrediction(ctx, exact.UserID, m.ID)
		assertFatalf(t, err == nil, "error getting prediction: %v", err)
		assertEquals(t, "corrected miss", int32(0), p.Score)
		assertEquals(t, "home lost", int32(1), res.HomeStats.Lost)
		assertEquals(t, "home won", int32(0), res.HomeStats.Won)
	})
}

func TestFinalizeMatch_teamStats(t *testing.T) {
	forEachStore(t, func(t *testing.T, db DB) {
		ctx := context.Background()
		f := newFixture(t, db)
		rules := model.DefaultScoringRules

		// X wins at home, then loses away.
		m1 := f.addMatch(t, db, f.teamX, f.teamY, kickoff)
		m2 := f.addMatch(t, db, f.teamZ, f.teamX, kickoff.Add(24*time.Hour))
		f.addMatch(t, db, f.teamY, f.teamZ, kickoff.Add(48*time.Hour)) // never played

		res, err := db.FinalizeMatch(ctx, m1.ID, 3, 1, rules)
		assertFatalf(t, err == nil, "error finalizing match: %v", err)
		assertEquals(t, "X won", int32(1), res.HomeStats.Won)
		assertEquals(t, "Y lost", int32(1), res.AwayStats.Lost)

		_, err = db.FinalizeMatch(ctx, m2.ID, 2, 0, rules)
		assertFatalf(t, err == nil, "error finalizing match: %v", err)

		x, err := db.GetTeamStats(ctx, f.teamX.ID, f.tournament.ID)
		assertFatalf(t, err == nil, "error getting stats: %v", err)
		assertEquals(t, "X won", int32(1), x.Won)
		assertEquals(t, "X lost", int32(1), x.Lost)
		assertEquals(t, "X tie", int32(0), x.Tie)
		assertEquals(t, "X points", rules.WonPoints+rules.LostPoints, x.Points)
		assertEquals(t, "X name", f.teamX.Name, x.TeamName)

		standings, err := db.GetStandings(ctx, f.tournament.ID)
		assertFatalf(t, err == nil, "error getting standings: %v", err)
		assertEquals(t, "num standings", 3, len(standings))
		for i := 1; i < len(standings); i++ {
			assertTrue(t, "ordered by points", standings[i-1].Points >= standings[i].Points)
		}

		// A redundant resync gives the same numbers.
		again, err := db.ResyncTeamStats(ctx, f.teamX.ID, f.tournament.ID, rules)
		assertFatalf(t, err == nil, "error resyncing stats: %v", err)
		assertEquals(t, "resynced stats", *x, model.TeamStats{
			TeamID:       again.TeamID,
			TournamentID: again.TournamentID,
			TeamName:     x.TeamName,
			Won:          again.Won,
			Tie:          again.Tie,
			Lost:         again.Lost,
			Points:       again.Points,
		})

		// Resync creates the row for a team that never played.
		fresh := addTeam(t, db, fmt.Sprintf("W %d", nextID()))
		s, err := db.ResyncTeamStats(ctx, fresh.ID, f.tournament.ID, rules)
		assertFatalf(t, err == nil, "error resyncing fresh team: %v", err)
		assertEquals(t, "fresh played", int32(0), s.Played())

		_, err = db.GetTeamStats(ctx, f.teamX.ID, -1)
		assertErrorIs(t, "missing stats", err, model.ErrNotFound)
	})
}

func TestFinalizeMatch_failuresChangeNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, db DB) {
		ctx := context.Background()
		f := newFixture(t, db)
		m := f.addMatch(t, db, f.teamX, f.teamY, kickoff)
		predict(t, db, f.ana, m, 1, 0, false)

		_, err := db.FinalizeMatch(ctx, m.ID, -1, 0, model.DefaultScoringRules)
		assertErrorIs(t, "negative goals", err, model.ErrValidation)

		stored, err := db.GetMatch(ctx, m.ID)
		assertFatalf(t, err == nil, "error getting match: %v", err)
		assertTrue(t, "still not finalized", !stored.IsFinalized())

		_, err = db.GetTeamStats(ctx, f.teamX.ID, f.tournament.ID)
		assertErrorIs(t, "no stats created", err, model.ErrNotFound)

		_, err = db.FinalizeMatch(ctx, 999999, 1, 0, model.DefaultScoringRules)
		assertErrorIs(t, "missing match", err, model.ErrNotFound)
	})
}

// Rules that pass the result checks but produce negative values fail on the
// table constraints after the match result has already been written.
func TestFinalizeMatch_cascadeFailureRollsBack(t *testing.T) {
	scoringFails := model.DefaultScoringRules
	scoringFails.TrendPoints = -1

	statsFail := model.DefaultScoringRules
	statsFail.LostPoints = -5

	tests := map[string]struct {
		rules      model.ScoringRules
		home, away int32 // ana's prediction, the result is always 1-0
	}{
		"prediction score rejected": {rules: scoringFails, home: 2, away: 0},
		"team stats rejected":       {rules: statsFail, home: 1, away: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			forEachStore(t, func(t *testing.T, db DB) {
				ctx := context.Background()
				f := newFixture(t, db)
				m := f.addMatch(t, db, f.teamX, f.teamY, kickoff)
				predict(t, db, f.ana, m, tc.home, tc.away, false)

				_, err := db.FinalizeMatch(ctx, m.ID, 1, 0, tc.rules)
				assertErrorIs(t, "finalize error", err, model.ErrValidation)

				stored, err := db.GetMatch(ctx, m.ID)
				assertFatalf(t, err == nil, "error getting match: %v", err)
				assertTrue(t, "result rolled back", !stored.IsFinalized())

				p, err := db.GetPrediction(ctx, f.ana.ID, m.ID)
				assertFatalf(t, err == nil, "error getting prediction: %v", err)
				assertEquals(t, "score", int32(0), p.Score)

				_, err = db.GetTeamStats(ctx, f.teamX.ID, f.tournament.ID)
				assertErrorIs(t, "no stats created", err, model.ErrNotFound)
			})
		})
	}
}

func TestFinalizeMatch_failedCorrectionKeepsResult(t *testing.T) {
	forEachStore(t, func(t *testing.T, db DB) {
		ctx := context.Background()
		f := newFixture(t, db)
		m := f.addMatch(t, db, f.teamX, f.teamY, kickoff)
		predict(t, db, f.ana, m, 1, 0, false)

		_, err := db.FinalizeMatch(ctx, m.ID, 1, 0, model.DefaultScoringRules)
		assertFatalf(t, err == nil, "error finalizing match: %v", err)

		broken := model.DefaultScoringRules
		broken.LostPoints = -5
		_, err = db.FinalizeMatch(ctx, m.ID, 0, 1, broken)
		assertErrorIs(t, "correction error", err, model.ErrValidation)

		stored, err := db.GetMatch(ctx, m.ID)
		assertFatalf(t, err == nil, "error getting match: %v", err)
		assertEquals(t, "result", "1-0", stored.Result())

		p, err := db.GetPrediction(ctx, f.ana.ID, m.ID)
		assertFatalf(t, err == nil, "error getting prediction: %v", err)
		assertEquals(t, "score", model.DefaultScoringRules.ExactPoints, p.Score)

		x, err := db.GetTeamStats(ctx, f.teamX.ID, f.tournament.ID)
		assertFatalf(t, err == nil, "error getting stats: %v", err)
		assertEquals(t, "won", int32(1), x.Won)
		assertEquals(t, "points", model.DefaultScoringRules.WonPoints, x.Points)
	})
}

// Two matches of the same team finalized at the same time must both be
// reflected in the team's stats.
func TestFinalizeMatch_concurrentSharedTeam(t *testing.T) {
	forEachStore(t, func(t *testing.T, db DB) {
		ctx := context.Background()
		f := newFixture(t, db)
		rules := model.DefaultScoringRules

		const rounds = 6
		matches := make([]*model.Match, 0, rounds)
		for i := 0; i < rounds; i++ {
			opponent := f.teamY
			if i%2 == 1 {
				opponent = f.teamZ
			}
			matches = append(matches, f.addMatch(t, db, f.teamX, opponent, kickoff.Add(time.Duration(i)*time.Hour)))
		}

		var wg sync.WaitGroup
		errs := make(chan error, rounds)
		for _, m := range matches {
			wg.Add(1)
			go func(m *model.Match) {
				defer wg.Done()
				// Retry the rare deadlock victim, the cascade is idempotent.
				for attempt := 0; attempt < 3; attempt++ {
					_, err := db.FinalizeMatch(ctx, m.ID, 1, 0, rules)
					if err == nil || !isConcurrentUpdate(err) {
						errs <- err
						return
					}
				}
				errs <- fmt.Errorf("match %d kept conflicting", m.ID)
			}(m)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assertFatalf(t, err == nil, "error finalizing concurrently: %v", err)
		}

		x, err := db.GetTeamStats(ctx, f.teamX.ID, f.tournament.ID)
		assertFatalf(t, err == nil, "error getting stats: %v", err)
		assertEquals(t, "X won every match", int32(rounds), x.Won)
		assertEquals(t, "X points", int32(rounds)*rules.WonPoints, x.Points)

		y, err := db.GetTeamStats(ctx, f.teamY.ID, f.tournament.ID)
		assertFatalf(t, err == nil, "error getting stats: %v", err)
		assertEquals(t, "Y lost", int32(rounds/2), y.Lost)
	})
}
