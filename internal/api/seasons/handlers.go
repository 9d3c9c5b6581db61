// internal/api/seasons/handlers.go

// Package seasons serves the read-only directory endpoints (fields, umpires,
// teams) plus the games listing and creation endpoints for a season.
package seasons

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bstan/leaguesched/internal/api/apiutil"
	appdb "github.com/bstan/leaguesched/internal/db"
	"github.com/bstan/leaguesched/internal/request"
)

const queryTimeout = 5 * time.Second

type Handlers struct {
	db *appdb.DB
}

func New(database *appdb.DB) *Handlers {
	return &Handlers{db: database}
}

type fieldResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/fields
func (h *Handlers) HandleListFields(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	fields, err := h.db.Queries.ListFields(ctx, season.AccountID)
	if err != nil {
		logger.Error().Err(err).Int64("account_id", season.AccountID).Msg("Failed to list fields")
		http.Error(w, "Failed to list fields", http.StatusInternalServerError)
		return
	}

	responses := make([]fieldResponse, 0, len(fields))
	for _, f := range fields {
		responses = append(responses, fieldResponse{ID: f.ID, Name: f.Name})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write field list")
	}
}

type umpireResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/umpires
func (h *Handlers) HandleListUmpires(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	umpires, err := h.db.Queries.ListUmpires(ctx, season.AccountID)
	if err != nil {
		logger.Error().Err(err).Int64("account_id", season.AccountID).Msg("Failed to list umpires")
		http.Error(w, "Failed to list umpires", http.StatusInternalServerError)
		return
	}

	responses := make([]umpireResponse, 0, len(umpires))
	for _, u := range umpires {
		responses = append(responses, umpireResponse{ID: u.ID, Name: u.Name})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write umpire list")
	}
}

type teamResponse struct {
	ID             int64  `json:"id"`
	LeagueSeasonID int64  `json:"leagueSeasonId"`
	Name           string `json:"name"`
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/teams
func (h *Handlers) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	teams, err := h.db.Queries.ListTeamSeasons(ctx, season.ID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to list teams")
		http.Error(w, "Failed to list teams", http.StatusInternalServerError)
		return
	}

	responses := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		responses = append(responses, teamResponse{ID: t.ID, LeagueSeasonID: t.LeagueSeasonID, Name: t.Name})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write team list")
	}
}

type gameResponse struct {
	ID                  int64   `json:"id"`
	LeagueSeasonID      int64   `json:"leagueSeasonId"`
	HomeTeamSeasonID    int64   `json:"homeTeamSeasonId"`
	VisitorTeamSeasonID int64   `json:"visitorTeamSeasonId"`
	FieldID             *int64  `json:"fieldId,omitempty"`
	GameDate            *string `json:"gameDate,omitempty"`
	GameStatus          string  `json:"gameStatus"`
	Version             int64   `json:"version"`
	UmpireIDs           []int64 `json:"umpireIds"`
}

func newGameResponse(g appdb.Game, umpireIDs []int64) gameResponse {
	resp := gameResponse{
		ID:                  g.ID,
		LeagueSeasonID:      g.LeagueSeasonID,
		HomeTeamSeasonID:    g.HomeTeamSeasonID,
		VisitorTeamSeasonID: g.VisitorTeamSeasonID,
		GameStatus:          g.GameStatus,
		Version:             g.Version,
		UmpireIDs:           umpireIDs,
	}
	if resp.UmpireIDs == nil {
		resp.UmpireIDs = []int64{}
	}
	if g.FieldID.Valid {
		resp.FieldID = &g.FieldID.Int64
	}
	if g.GameDate.Valid {
		formatted := g.GameDate.Time.Format(time.RFC3339)
		resp.GameDate = &formatted
	}
	return resp
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/games
func (h *Handlers) HandleListGames(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	games, err := h.db.Queries.ListGamesBySeason(ctx, season.ID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to list games")
		http.Error(w, "Failed to list games", http.StatusInternalServerError)
		return
	}

	responses := make([]gameResponse, 0, len(games))
	for _, g := range games {
		umpireIDs, err := h.db.Queries.ListGameUmpires(ctx, g.ID)
		if err != nil {
			logger.Error().Err(err).Int64("game_id", g.ID).Msg("Failed to list game umpires")
			http.Error(w, "Failed to list games", http.StatusInternalServerError)
			return
		}
		responses = append(responses, newGameResponse(g, umpireIDs))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write game list")
	}
}

type createGameRequest struct {
	LeagueSeasonID      int64 `json:"leagueSeasonId" validate:"required,gt=0"`
	HomeTeamSeasonID    int64 `json:"homeTeamSeasonId" validate:"required,gt=0"`
	VisitorTeamSeasonID int64 `json:"visitorTeamSeasonId" validate:"required,gt=0,nefield=HomeTeamSeasonID"`
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/games
//
// Games are created unscheduled. The solver assigns field, date, and umpires
// later through the apply flow.
func (h *Handlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req createGameRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	// Both teams must belong to this season, and to the requested league.
	home, ok := h.requireTeam(ctx, w, r, season.ID, req.HomeTeamSeasonID)
	if !ok {
		return
	}
	visitor, ok := h.requireTeam(ctx, w, r, season.ID, req.VisitorTeamSeasonID)
	if !ok {
		return
	}
	if home.LeagueSeasonID != req.LeagueSeasonID || visitor.LeagueSeasonID != req.LeagueSeasonID {
		http.Error(w, "Both teams must belong to the given league", http.StatusBadRequest)
		return
	}

	game, err := h.db.Queries.CreateGame(ctx, appdb.CreateGameParams{
		LeagueSeasonID:      req.LeagueSeasonID,
		HomeTeamSeasonID:    req.HomeTeamSeasonID,
		VisitorTeamSeasonID: req.VisitorTeamSeasonID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to create game")
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, newGameResponse(game, nil)); err != nil {
		logger.Error().Err(err).Int64("game_id", game.ID).Msg("Failed to write game response")
	}
}

func (h *Handlers) requireSeason(ctx context.Context, w http.ResponseWriter, r *http.Request) (appdb.Season, bool) {
	accountID, err := request.AccountIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return appdb.Season{}, false
	}
	seasonID, err := request.SeasonIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return appdb.Season{}, false
	}

	season, err := h.db.Queries.GetSeason(ctx, appdb.GetSeasonParams{AccountID: accountID, SeasonID: seasonID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Season not found", http.StatusNotFound)
			return appdb.Season{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("season_id", seasonID).Msg("Failed to load season")
		http.Error(w, "Failed to load season", http.StatusInternalServerError)
		return appdb.Season{}, false
	}
	return season, true
}

func (h *Handlers) requireTeam(ctx context.Context, w http.ResponseWriter, r *http.Request, seasonID, teamSeasonID int64) (appdb.TeamSeason, bool) {
	team, err := h.db.Queries.GetTeamSeason(ctx, appdb.GetTeamSeasonParams{ID: teamSeasonID, SeasonID: seasonID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return appdb.TeamSeason{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("team_season_id", teamSeasonID).Msg("Failed to load team")
		http.Error(w, "Failed to load team", http.StatusInternalServerError)
		return appdb.TeamSeason{}, false
	}
	return team, true
}
