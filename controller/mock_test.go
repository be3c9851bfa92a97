package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mww/fantasy_predictions/db/mockdb"
	"github.com/mww/fantasy_predictions/model"
	"github.com/mww/fantasy_predictions/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockController(db *mockdb.DB) *controller {
	return &controller{
		clock: testutils.NewClock(),
		db:    db,
		opts:  DefaultOptions(),
	}
}

func TestGetTournamentRanking_sharedRead(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	release := make(chan time.Time)
	entries := []model.RankingEntry{
		{UserID: 1, Username: "ana", Total: 7, Count: 3},
		{UserID: 2, Username: "bob", Total: 2, Count: 3},
	}
	db.On("TournamentRanking", mock.Anything, int32(5)).WaitUntil(release).Return(entries, nil).Once()

	const readers = 4
	results := make([][]model.RankingEntry, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := c.GetTournamentRanking(context.Background(), 5)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	// give the readers time to pile up behind the first call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	db.AssertNumberOfCalls(t, "TournamentRanking", 1)
	for _, r := range results {
		assert.Equal(t, entries, r)
	}

	// the returned slices are independent copies
	results[0][0].Total = 100
	assert.Equal(t, int32(7), results[1][0].Total)
}

// rankingDB blocks ranking reads until released or until the context of the
// read is done.
type rankingDB struct {
	mockdb.DB
	entries []model.RankingEntry
	release chan struct{}
	calls   atomic.Int32
}

func (db *rankingDB) TournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error) {
	db.calls.Add(1)
	select {
	case <-db.release:
		return db.entries, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestGetTournamentRanking_firstCallerCancelled(t *testing.T) {
	db := &rankingDB{
		entries: []model.RankingEntry{{UserID: 1, Username: "ana", Total: 3, Count: 1}},
		release: make(chan struct{}),
	}
	c := newMockController(&db.DB)
	c.db = db

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.GetTournamentRanking(ctxA, 5)
		errA <- err
	}()
	require.Eventually(t, func() bool { return db.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		entries []model.RankingEntry
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		r, err := c.GetTournamentRanking(context.Background(), 5)
		resB <- result{r, err}
	}()

	// let the second reader join the running read, then drop the first one
	time.Sleep(20 * time.Millisecond)
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(db.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, db.entries, b.entries)
	assert.Equal(t, int32(1), db.calls.Load())
}

func TestGetTournamentRanking_notSharedAcrossFinalize(t *testing.T) {
	db := &rankingDB{release: make(chan struct{})}
	c := newMockController(&db.DB)
	c.db = db

	home, away := int32(1), int32(0)
	db.On("FinalizeMatch", mock.Anything, int32(11), int32(1), int32(0), mock.Anything).
		Return(&model.Finalization{Match: model.Match{ID: 11, HomeGoals: &home, AwayGoals: &away}}, nil)

	var wg sync.WaitGroup
	read := func() {
		defer wg.Done()
		_, err := c.GetTournamentRanking(context.Background(), 5)
		assert.NoError(t, err)
	}

	wg.Add(1)
	go read()
	require.Eventually(t, func() bool { return db.calls.Load() == 1 }, time.Second, time.Millisecond)

	_, err := c.FinalizeMatch(context.Background(), 11, 1, 0)
	require.NoError(t, err)

	// a reader arriving after the finalization gets its own read
	wg.Add(1)
	go read()
	require.Eventually(t, func() bool { return db.calls.Load() == 2 }, time.Second, time.Millisecond)

	close(db.release)
	wg.Wait()
}

func TestGetTournamentRanking_sortsTies(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	db.On("TournamentRanking", mock.Anything, int32(2)).Return([]model.RankingEntry{
		{UserID: 9, Username: "carl", Total: 4, Count: 2},
		{UserID: 3, Username: "bob", Total: 4, Count: 2},
		{UserID: 1, Username: "Zoe", Total: 1, Count: 2},
		{UserID: 7, Username: "ana", Total: 6, Count: 2},
	}, nil)

	ranking, err := c.GetTournamentRanking(context.Background(), 2)
	require.NoError(t, err)

	order := make([]int32, 0, len(ranking))
	for _, e := range ranking {
		order = append(order, e.UserID)
	}
	assert.Equal(t, []int32{7, 3, 9, 1}, order)
}

func TestGetTeamStandings_sorted(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	db.On("GetTournament", mock.Anything, int32(2)).Return(&model.Tournament{ID: 2}, nil)
	db.On("GetStandings", mock.Anything, int32(2)).Return([]model.TeamStats{
		{TeamID: 5, Points: 3, Won: 1},
		{TeamID: 2, Points: 3, Won: 1},
		{TeamID: 8, Points: 6, Won: 2},
	}, nil)

	standings, err := c.GetTeamStandings(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int32{8, 2, 5}, []int32{standings[0].TeamID, standings[1].TeamID, standings[2].TeamID})
}

func TestGetLeagueRanking_error(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	db.On("LeagueRanking", mock.Anything, int32(9)).Return(nil, model.ErrNotFound)

	_, err := c.GetLeagueRanking(context.Background(), 9)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFinalizeMatch_passesRules(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)
	c.opts.Rules.ExactPoints = 5

	home, away := int32(3), int32(3)
	f := &model.Finalization{
		Match:  model.Match{ID: 11, HomeID: 1, AwayID: 2, HomeGoals: &home, AwayGoals: &away},
		Scored: 2,
	}
	db.On("FinalizeMatch", mock.Anything, int32(11), int32(3), int32(3), c.opts.Rules).Return(f, nil)

	m, err := c.FinalizeMatch(context.Background(), 11, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "3-3", m.Result())
	db.AssertExpectations(t)
}

func TestFinalizeMatch_negativeGoals(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	_, err := c.FinalizeMatch(context.Background(), 11, -1, 0)
	assert.ErrorIs(t, err, model.ErrValidation)
	db.AssertNotCalled(t, "FinalizeMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalizeMatch_dbError(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	db.On("FinalizeMatch", mock.Anything, int32(11), int32(1), int32(0), mock.Anything).
		Return(nil, model.ErrConcurrentUpdate)

	_, err := c.FinalizeMatch(context.Background(), 11, 1, 0)
	assert.True(t, errors.Is(err, model.ErrConcurrentUpdate))
}

func TestSavePrediction_rejected(t *testing.T) {
	kickoff := testutils.Kickoff
	home, away := int32(1), int32(0)

	tests := map[string]struct {
		match     *model.Match
		matchErr  error
		homeGoals *int32
		wantErr   error
	}{
		"negative goals": {
			homeGoals: model.Goals(-1),
			wantErr:   model.ErrValidation,
		},
		"unknown match": {
			homeGoals: model.Goals(1),
			matchErr:  model.ErrNotFound,
			wantErr:   model.ErrNotFound,
		},
		"finalized": {
			match:     &model.Match{ID: 3, When: &kickoff, HomeGoals: &home, AwayGoals: &away},
			homeGoals: model.Goals(1),
			wantErr:   model.ErrPredictionClosed,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			db := &mockdb.DB{}
			c := newMockController(db)
			db.On("GetMatch", mock.Anything, int32(3)).Return(tc.match, tc.matchErr)

			_, err := c.SavePrediction(context.Background(), 1, 3, tc.homeGoals, model.Goals(0), false)
			assert.ErrorIs(t, err, tc.wantErr)
			db.AssertNotCalled(t, "SavePrediction", mock.Anything, mock.Anything)
		})
	}
}

func TestSavePrediction_noKickoffTime(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	db.On("GetMatch", mock.Anything, int32(3)).Return(&model.Match{ID: 3, HomeID: 1, AwayID: 2}, nil)
	db.On("SavePrediction", mock.Anything, mock.Anything).Return(nil)

	p, err := c.SavePrediction(context.Background(), 1, 3, model.Goals(0), model.Goals(2), true)
	require.NoError(t, err)
	assert.Equal(t, model.TrendAway, p.Trend)
	assert.True(t, p.Starred)
}

func TestJoinLeague_defaultOrigin(t *testing.T) {
	db := &mockdb.DB{}
	c := newMockController(db)

	l := &model.League{ID: 4, Name: "Amigos", Slug: "amigos", TournamentID: 1,
		Members: []model.LeagueMember{{UserID: 1, IsOwner: true, Origin: model.JoinCreated}}}
	db.On("GetLeague", mock.Anything, int32(4)).Return(l, nil)
	db.On("AddLeagueMember", mock.Anything, int32(4), mock.MatchedBy(func(m *model.LeagueMember) bool {
		return m.UserID == 2 && m.Origin == model.JoinDirect && !m.IsOwner
	})).Return(nil)

	_, err := c.JoinLeague(context.Background(), 4, 2, "")
	require.NoError(t, err)
	db.AssertExpectations(t)
}
