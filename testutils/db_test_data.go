package testutils

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/mww/fantasy_predictions/containers"
	"github.com/mww/fantasy_predictions/db"
	"github.com/mww/fantasy_predictions/model"
	"github.com/rs/zerolog/log"
)

// Kickoff is the start time of the first fixture match. The test clock starts
// two days before it.
var Kickoff = time.Date(2026, time.June, 11, 19, 0, 0, 0, time.UTC)

var fixtureCtr = int32(0)

type TestDB struct {
	container *containers.DBContainer
	DB        db.DB
	Clock     *clock.Mock
}

func NewTestDB() *TestDB {
	container := containers.NewDBContainer()
	clock := NewClock()

	db, err := db.New(context.Background(), container.ConnectionString(), clock)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to db in test container")
	}

	return &TestDB{
		container: container,
		DB:        db,
		Clock:     clock,
	}
}

// NewSQLiteTestDB is a TestDB backed by an in-memory SQLite store, for tests
// that don't need postgres.
func NewSQLiteTestDB() *TestDB {
	clock := NewClock()

	db, err := db.NewSQLite(":memory:", clock)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening sqlite test db")
	}

	return &TestDB{
		DB:    db,
		Clock: clock,
	}
}

func NewClock() *clock.Mock {
	c := clock.NewMock()
	c.Set(Kickoff.Add(-48 * time.Hour))
	return c
}

func (db *TestDB) Shutdown() {
	db.DB.Close()
	if db.container != nil {
		db.container.Shutdown()
	}
}

// Fixture is a small tournament: three teams, three users and two scheduled
// matches between the teams. Names are unique per call so tests sharing a
// database don't collide.
type Fixture struct {
	Tournament *model.Tournament
	Home       *model.Team
	Away       *model.Team
	Other      *model.Team
	Users      []*model.User
	First      *model.Match // Home vs Away at Kickoff
	Second     *model.Match // Away vs Other a day later
}

func InsertFixture(db db.DB) (*Fixture, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := atomic.AddInt32(&fixtureCtr, 1)
	f := &Fixture{}

	teams := make([]*model.Team, 0, 3)
	for _, name := range []string{"Atlético %d", "Boca %d", "Colón %d"} {
		n := fmt.Sprintf(name, id)
		t := &model.Team{Name: n, Slug: model.Slugify(n)}
		if err := db.AddTeam(ctx, t); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	f.Home, f.Away, f.Other = teams[0], teams[1], teams[2]

	f.Tournament = &model.Tournament{
		Name:      fmt.Sprintf("Copa %d", id),
		Slug:      fmt.Sprintf("copa-%d", id),
		Published: true,
		TeamIDs:   []int32{f.Home.ID, f.Away.ID, f.Other.ID},
	}
	if err := db.AddTournament(ctx, f.Tournament); err != nil {
		return nil, err
	}

	for _, name := range []string{"ana", "bob", "carl"} {
		u := &model.User{
			Username:  fmt.Sprintf("%s%d", name, id),
			Email:     fmt.Sprintf("%s%d@example.com", name, id),
			InviteKey: model.NewInviteKey(),
		}
		if err := db.AddUser(ctx, u); err != nil {
			return nil, err
		}
		f.Users = append(f.Users, u)
	}

	first := Kickoff
	second := Kickoff.Add(24 * time.Hour)
	f.First = &model.Match{TournamentID: f.Tournament.ID, HomeID: f.Home.ID, AwayID: f.Away.ID, When: &first}
	f.Second = &model.Match{TournamentID: f.Tournament.ID, HomeID: f.Away.ID, AwayID: f.Other.ID, When: &second}
	for _, m := range []*model.Match{f.First, f.Second} {
		if err := db.AddMatch(ctx, m); err != nil {
			return nil, err
		}
	}

	return f, nil
}
