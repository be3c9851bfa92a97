package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mww/fantasy_predictions/controller"
	"github.com/unrolled/render"
	"golang.org/x/time/rate"
)

func getRouter(ctrl controller.C, render *render.Render, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(10 * time.Second))

	if opts.WriteRateLimit > 0 {
		r.Use(writeRateLimit(rate.NewLimiter(rate.Limit(opts.WriteRateLimit), burst(opts.WriteRateLimit)), render))
	}

	r.Get("/", rootHandler(ctrl, render))

	r.Route("/tournaments/{tournamentID:\\d+}", func(r chi.Router) {
		r.Get("/", getTournamentHandler(ctrl, render))
		r.Get("/ranking", tournamentRankingHandler(ctrl, render))
		r.Get("/standings", standingsHandler(ctrl, render))
		r.Get("/matches/next", nextMatchesHandler(ctrl, render))
	})

	r.Get("/teams/{teamID:\\d+}/matches", latestMatchesHandler(ctrl, render))

	r.Route("/matches/{matchID:\\d+}", func(r chi.Router) {
		r.Get("/", getMatchHandler(ctrl, render))
		r.Put("/predictions/{userID:\\d+}", savePredictionHandler(ctrl, render))
	})

	r.Route("/leagues", func(r chi.Router) {
		r.Post("/", addLeagueHandler(ctrl, render))
		r.Get("/{leagueID:\\d+}", getLeagueHandler(ctrl, render))
		r.Get("/{leagueID:\\d+}/ranking", leagueRankingHandler(ctrl, render))
		r.Post("/{leagueID:\\d+}/members", joinLeagueHandler(ctrl, render))
	})

	r.Get("/users/{userID:\\d+}/stats/{tournamentID:\\d+}", userStatsHandler(ctrl, render))

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BasicAuth("predictions", map[string]string{opts.AdminUser: opts.AdminPassword}))
		r.Use(middleware.Timeout(30 * time.Second)) // Set a longer timeout for /admin actions

		r.Post("/teams", addTeamHandler(ctrl, render))
		r.Post("/tournaments", addTournamentHandler(ctrl, render))
		r.Post("/tournaments/{tournamentID:\\d+}/teams/{teamID:\\d+}/resync", resyncTeamStatsHandler(ctrl, render))
		r.Post("/matches", addMatchHandler(ctrl, render))
		r.Post("/matches/{matchID:\\d+}/result", finalizeMatchHandler(ctrl, render))
		r.Post("/users", addUserHandler(ctrl, render))
	})

	return r
}

// writeRateLimit rejects mutating requests once the limiter runs out of tokens.
func writeRateLimit(limiter *rate.Limiter, render *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if !limiter.Allow() {
					render.JSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func burst(limit float64) int {
	if limit < 1 {
		return 1
	}
	return int(limit)
}
