// Seed fills a store with a demo tournament, teams, users and a league.
//
// Run it from the repository root with the same environment as the server:
//
//	DB_DRIVER=sqlite go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/mww/fantasy_predictions/config"
	"github.com/mww/fantasy_predictions/controller"
	"github.com/mww/fantasy_predictions/db"
	"github.com/mww/fantasy_predictions/model"
	"github.com/rs/zerolog/log"
)

var teamNames = []string{
	"Argentina", "Brasil", "Uruguay", "Colombia",
	"México", "Estados Unidos", "España", "Japón",
}

var usernames = []string{"lucia", "mateo", "valentina", "santiago", "camila"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogPretty)

	dsn := cfg.ConnString
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}

	ctx := context.Background()
	clock := clock.New()
	db, err := db.Open(ctx, cfg.DBDriver, dsn, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to DB")
	}
	defer db.Close()

	ctrl, err := controller.New(clock, db, controller.Options{
		Rules:           cfg.Rules,
		HoursToDeadline: cfg.HoursToDeadline,
		NextMatchesDays: cfg.NextMatchesDays,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating controller")
	}

	if err := seed(ctx, ctrl, clock.Now()); err != nil {
		log.Fatal().Err(err).Msg("error seeding data")
	}
	log.Info().Msg("seed completed")
}

func seed(ctx context.Context, ctrl controller.C, now time.Time) error {
	suffix := now.Format("0102-1504")

	teamIDs := make([]int32, 0, len(teamNames))
	for _, name := range teamNames {
		t, err := ctrl.AddTeam(ctx, fmt.Sprintf("%s %s", name, suffix))
		if err != nil {
			return fmt.Errorf("error adding team %s: %w", name, err)
		}
		teamIDs = append(teamIDs, t.ID)
	}

	tournament, err := ctrl.AddTournament(ctx, "Copa Demo "+suffix, true, teamIDs)
	if err != nil {
		return fmt.Errorf("error adding tournament: %w", err)
	}
	log.Info().Int32("tournament_id", tournament.ID).Str("slug", tournament.Slug).Msg("created tournament")

	users := make([]*model.User, 0, len(usernames))
	for _, name := range usernames {
		u, err := ctrl.AddUser(ctx, fmt.Sprintf("%s_%s", name, suffix), fmt.Sprintf("%s@example.com", name))
		if err != nil {
			return fmt.Errorf("error adding user %s: %w", name, err)
		}
		users = append(users, u)
	}

	// Pair the teams in order, one match per day starting tomorrow at 20:00 UTC.
	start := now.UTC().Truncate(24 * time.Hour).Add(24*time.Hour + 20*time.Hour)
	matches := make([]*model.Match, 0, len(teamIDs)/2)
	for i := 0; i+1 < len(teamIDs); i += 2 {
		when := start.Add(time.Duration(i/2) * 24 * time.Hour)
		m, err := ctrl.AddMatch(ctx, &model.Match{
			TournamentID: tournament.ID,
			HomeID:       teamIDs[i],
			AwayID:       teamIDs[i+1],
			When:         &when,
			Location:     "Estadio Demo",
		})
		if err != nil {
			return fmt.Errorf("error adding match: %w", err)
		}
		matches = append(matches, m)
	}

	for i, u := range users {
		for j, m := range matches {
			home, away := int32((i+j)%3), int32((i*j)%2)
			if _, err := ctrl.SavePrediction(ctx, u.ID, m.ID, &home, &away, j == i%len(matches)); err != nil {
				return fmt.Errorf("error saving prediction for %s: %w", u.Username, err)
			}
		}
	}

	league, err := ctrl.AddLeague(ctx, "Amigos "+suffix, tournament.ID, users[0].ID)
	if err != nil {
		return fmt.Errorf("error adding league: %w", err)
	}
	for _, u := range users[1:] {
		if _, err := ctrl.JoinLeague(ctx, league.ID, u.ID, model.JoinInvite); err != nil {
			return fmt.Errorf("error joining league: %w", err)
		}
	}
	log.Info().Int32("league_id", league.ID).Int("members", len(users)).Msg("created league")

	return nil
}
