package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/mww/fantasy_predictions/config"
	"github.com/mww/fantasy_predictions/controller"
	"github.com/mww/fantasy_predictions/db"
	"github.com/mww/fantasy_predictions/web"
	"github.com/rs/zerolog/log"
)

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

	clock := clock.New()
	db, err := db.Open(context.Background(), cfg.DBDriver, dsn, clock)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("cannot connect to DB")
	}
	defer db.Close()

	ctrl, err := controller.New(clock, db, controller.Options{
		Rules:           cfg.Rules,
		HoursToDeadline: cfg.HoursToDeadline,
		NextMatchesDays: cfg.NextMatchesDays,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating a new controller")
	}

	server, err := web.NewServer(cfg.Port, ctrl, web.Options{
		AdminUser:      cfg.AdminUser,
		AdminPassword:  cfg.AdminPassword,
		CORSOrigins:    cfg.CORSOrigins,
		WriteRateLimit: cfg.WriteRateLimit,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating new web server")
	}

	shutdown := make(chan bool)
	wg := &sync.WaitGroup{}

	// Setup a handler to catch ctrl-c signals and properly shutdown everything.
	intChannel := make(chan os.Signal, 2)
	signal.Notify(intChannel, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-intChannel
		close(shutdown)

		if err := waitTimeout(wg, 10*time.Second); err != nil {
			log.Error().Msg("timed out waiting for proper shutdown")
			os.Exit(255)
		}
	}()

	// Start the web server
	wg.Add(1)
	go server.ListenAndServe(shutdown, wg)

	// Wait for everything to stop.
	wg.Wait()
	log.Info().Msg("server shutdown")
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) error {
	c := make(chan any)
	go func() {
		defer close(c)
		wg.Wait()
	}()

	select {
	case <-c:
		return nil // completed normally
	case <-time.After(timeout):
		return errors.New("timed out waiting")
	}
}
