package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mww/fantasy_predictions/controller"
	"github.com/mww/fantasy_predictions/model"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type errorResponse struct {
	Error string `json:"error"`
}

// renderError maps the model error kinds to HTTP status codes.
func renderError(w http.ResponseWriter, render *render.Render, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateEntry), errors.Is(err, model.ErrConcurrentUpdate):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unexpected error handling request")
	}
	render.JSON(w, status, errorResponse{Error: err.Error()})
}

// urlID parses a numeric chi URL parameter. The routes only match digits, so
// errors come from values out of the int32 range.
func urlID(r *http.Request, name string) (int32, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, model.Invalid("error parsing %s: %v", name, err)
	}
	return int32(id), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return model.Invalid("error parsing request body: %v", err)
	}
	return nil
}

// leagueResponse adds the owner to the league so clients don't scan the members.
type leagueResponse struct {
	*model.League
	OwnerID int32 `json:"owner_id,omitempty"`
}

func newLeagueResponse(l *model.League) leagueResponse {
	res := leagueResponse{League: l}
	if o := l.Owner(); o != nil {
		res.OwnerID = o.UserID
	}
	return res
}

type standingResponse struct {
	model.TeamStats
	Played int32 `json:"played"`
}

func rootHandler(_ controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Text(w, http.StatusOK, "fantasy predictions")
	}
}

func getTournamentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		t, err := ctrl.GetTournament(r.Context(), id)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, t)
	}
}

func tournamentRankingHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		ranking, err := ctrl.GetTournamentRanking(r.Context(), id)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, ranking)
	}
}

func standingsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		standings, err := ctrl.GetTeamStandings(r.Context(), id)
		if err != nil {
			renderError(w, render, err)
			return
		}
		res := make([]standingResponse, 0, len(standings))
		for _, s := range standings {
			res = append(res, standingResponse{TeamStats: s, Played: s.Played()})
		}
		render.JSON(w, http.StatusOK, res)
	}
}

func nextMatchesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		days := 0
		if d := r.URL.Query().Get("days"); d != "" {
			if days, err = strconv.Atoi(d); err != nil || days <= 0 {
				renderError(w, render, model.Invalid("days must be a positive number, got %q", d))
				return
			}
		}

		matches, err := ctrl.NextMatches(r.Context(), id, days)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, matches)
	}
}

func latestMatchesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, err := urlID(r, "teamID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		var tournamentID int64
		if t := r.URL.Query().Get("tournament"); t != "" {
			if tournamentID, err = strconv.ParseInt(t, 10, 32); err != nil {
				renderError(w, render, model.Invalid("error parsing tournament: %v", err))
				return
			}
		}

		matches, err := ctrl.LatestMatches(r.Context(), teamID, int32(tournamentID))
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, matches)
	}
}

func getMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "matchID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		m, err := ctrl.GetMatch(r.Context(), id)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, m)
	}
}

type predictionRequest struct {
	HomeGoals *int32 `json:"home_goals"`
	AwayGoals *int32 `json:"away_goals"`
	Starred   bool   `json:"starred"`
}

func savePredictionHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := urlID(r, "matchID")
		if err != nil {
			renderError(w, render, err)
			return
		}
		userID, err := urlID(r, "userID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		var req predictionRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}

		p, err := ctrl.SavePrediction(r.Context(), userID, matchID, req.HomeGoals, req.AwayGoals, req.Starred)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, p)
	}
}

type leagueRequest struct {
	Name         string `json:"name"`
	TournamentID int32  `json:"tournament_id"`
	OwnerID      int32  `json:"owner_id"`
}

func addLeagueHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req leagueRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}

		l, err := ctrl.AddLeague(r.Context(), req.Name, req.TournamentID, req.OwnerID)
		if err != nil {
			renderError(w, render, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/leagues/%d", l.ID))
		render.JSON(w, http.StatusCreated, newLeagueResponse(l))
	}
}

func getLeagueHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		l, err := ctrl.GetLeague(r.Context(), id)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, newLeagueResponse(l))
	}
}

func leagueRankingHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		ranking, err := ctrl.GetLeagueRanking(r.Context(), id)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, ranking)
	}
}

type joinRequest struct {
	UserID int32  `json:"user_id"`
	Origin string `json:"origin"`
}

func joinLeagueHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		var req joinRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}
		origin, err := model.ParseJoinOrigin(req.Origin)
		if err != nil {
			renderError(w, render, err)
			return
		}

		l, err := ctrl.JoinLeague(r.Context(), id, req.UserID, origin)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, newLeagueResponse(l))
	}
}

func userStatsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlID(r, "userID")
		if err != nil {
			renderError(w, render, err)
			return
		}
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		stats, err := ctrl.GetUserStats(r.Context(), userID, tournamentID)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, stats)
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

func addTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}

		t, err := ctrl.AddTeam(r.Context(), req.Name)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusCreated, t)
	}
}

type tournamentRequest struct {
	Name      string  `json:"name"`
	Published bool    `json:"published"`
	TeamIDs   []int32 `json:"team_ids"`
}

func addTournamentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tournamentRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}

		t, err := ctrl.AddTournament(r.Context(), req.Name, req.Published, req.TeamIDs)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusCreated, t)
	}
}

func resyncTeamStatsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			renderError(w, render, err)
			return
		}
		teamID, err := urlID(r, "teamID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		stats, err := ctrl.ResyncTeamStats(r.Context(), teamID, tournamentID)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, stats)
	}
}

type matchRequest struct {
	TournamentID int32      `json:"tournament_id"`
	HomeID       int32      `json:"home_id"`
	AwayID       int32      `json:"away_id"`
	StartsAt     *time.Time `json:"starts_at"`
	Location     string     `json:"location"`
	Referee      string     `json:"referee"`
}

func addMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}

		m, err := ctrl.AddMatch(r.Context(), &model.Match{
			TournamentID: req.TournamentID,
			HomeID:       req.HomeID,
			AwayID:       req.AwayID,
			When:         req.StartsAt,
			Location:     req.Location,
			Referee:      req.Referee,
		})
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusCreated, m)
	}
}

type resultRequest struct {
	HomeGoals *int32 `json:"home_goals"`
	AwayGoals *int32 `json:"away_goals"`
}

func finalizeMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "matchID")
		if err != nil {
			renderError(w, render, err)
			return
		}

		var req resultRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}
		if req.HomeGoals == nil || req.AwayGoals == nil {
			renderError(w, render, model.Invalid("both home_goals and away_goals are required"))
			return
		}

		m, err := ctrl.FinalizeMatch(r.Context(), id, *req.HomeGoals, *req.AwayGoals)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusOK, m)
	}
}

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func addUserHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRequest
		if err := decodeBody(w, r, &req); err != nil {
			renderError(w, render, err)
			return
		}

		u, err := ctrl.AddUser(r.Context(), req.Username, req.Email)
		if err != nil {
			renderError(w, render, err)
			return
		}
		render.JSON(w, http.StatusCreated, u)
	}
}
