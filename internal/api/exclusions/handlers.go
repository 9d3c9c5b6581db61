// internal/api/exclusions/handlers.go

// Package exclusions serves the CRUD endpoints for season-wide, per-team,
// and per-umpire exclusion windows.
package exclusions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bstan/leaguesched/internal/api/apiutil"
	"github.com/bstan/leaguesched/internal/availability"
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

// exclusionWindow is the shared shape of all three exclusion kinds. Team and
// umpire exclusions add a subject id on top of it.
type exclusionWindow struct {
	StartDate string  `json:"startDate" validate:"required"`
	EndDate   string  `json:"endDate" validate:"required"`
	Reason    *string `json:"reason"`
	Enabled   bool    `json:"enabled"`
}

func (wdw exclusionWindow) validateDates() error {
	if _, err := availability.ParseDate(wdw.StartDate, time.UTC); err != nil {
		return fmt.Errorf("startDate: %w", err)
	}
	if _, err := availability.ParseDate(wdw.EndDate, time.UTC); err != nil {
		return fmt.Errorf("endDate: %w", err)
	}
	if wdw.EndDate < wdw.StartDate {
		return availability.ErrDateOrder
	}
	return nil
}

type seasonExclusionRequest struct {
	exclusionWindow
}

type seasonExclusionResponse struct {
	ID        int64   `json:"id"`
	SeasonID  int64   `json:"seasonId"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Reason    *string `json:"reason,omitempty"`
	Enabled   bool    `json:"enabled"`
}

func newSeasonExclusionResponse(e appdb.SeasonExclusion) seasonExclusionResponse {
	return seasonExclusionResponse{
		ID:        e.ID,
		SeasonID:  e.SeasonID,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		Reason:    apiutil.NullStringPtr(e.Reason),
		Enabled:   e.Enabled,
	}
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/season-exclusions
func (h *Handlers) HandleListSeasonExclusions(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	exclusions, err := h.db.Queries.ListSeasonExclusions(ctx, season.ID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to list season exclusions")
		http.Error(w, "Failed to list season exclusions", http.StatusInternalServerError)
		return
	}

	responses := make([]seasonExclusionResponse, 0, len(exclusions))
	for _, e := range exclusions {
		responses = append(responses, newSeasonExclusionResponse(e))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write season exclusion list")
	}
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/season-exclusions
func (h *Handlers) HandleCreateSeasonExclusion(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req seasonExclusionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.validateDates(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	excl, err := h.db.Queries.CreateSeasonExclusion(ctx, appdb.CreateSeasonExclusionParams{
		SeasonID:  season.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    apiutil.ToNullString(req.Reason),
		Enabled:   req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to create season exclusion")
		http.Error(w, "Failed to create season exclusion", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, newSeasonExclusionResponse(excl)); err != nil {
		logger.Error().Err(err).Int64("exclusion_id", excl.ID).Msg("Failed to write season exclusion response")
	}
}

// PUT /api/accounts/{accountId}/seasons/{seasonId}/season-exclusions/{exclusionId}
func (h *Handlers) HandleUpdateSeasonExclusion(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	exclusionID, err := request.PathID(r, "exclusionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req seasonExclusionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.validateDates(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	rows, err := h.db.Queries.UpdateSeasonExclusion(ctx, appdb.UpdateSeasonExclusionParams{
		ID:        exclusionID,
		SeasonID:  season.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    apiutil.ToNullString(req.Reason),
		Enabled:   req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("exclusion_id", exclusionID).Msg("Failed to update season exclusion")
		http.Error(w, "Failed to update season exclusion", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Season exclusion not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/accounts/{accountId}/seasons/{seasonId}/season-exclusions/{exclusionId}
func (h *Handlers) HandleDeleteSeasonExclusion(w http.ResponseWriter, r *http.Request) {
	h.deleteExclusion(w, r, "Season exclusion", h.db.Queries.DeleteSeasonExclusion)
}

type teamExclusionRequest struct {
	TeamSeasonID int64 `json:"teamSeasonId" validate:"required,gt=0"`
	exclusionWindow
}

type teamExclusionResponse struct {
	ID           int64   `json:"id"`
	SeasonID     int64   `json:"seasonId"`
	TeamSeasonID int64   `json:"teamSeasonId"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Reason       *string `json:"reason,omitempty"`
	Enabled      bool    `json:"enabled"`
}

func newTeamExclusionResponse(e appdb.TeamExclusion) teamExclusionResponse {
	return teamExclusionResponse{
		ID:           e.ID,
		SeasonID:     e.SeasonID,
		TeamSeasonID: e.TeamSeasonID,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Reason:       apiutil.NullStringPtr(e.Reason),
		Enabled:      e.Enabled,
	}
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/team-exclusions
func (h *Handlers) HandleListTeamExclusions(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	exclusions, err := h.db.Queries.ListTeamExclusions(ctx, season.ID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to list team exclusions")
		http.Error(w, "Failed to list team exclusions", http.StatusInternalServerError)
		return
	}

	responses := make([]teamExclusionResponse, 0, len(exclusions))
	for _, e := range exclusions {
		responses = append(responses, newTeamExclusionResponse(e))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write team exclusion list")
	}
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/team-exclusions
func (h *Handlers) HandleCreateTeamExclusion(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req teamExclusionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.validateDates(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireTeamSeason(ctx, w, r, season.ID, req.TeamSeasonID) {
		return
	}

	excl, err := h.db.Queries.CreateTeamExclusion(ctx, appdb.CreateTeamExclusionParams{
		SeasonID:     season.ID,
		TeamSeasonID: req.TeamSeasonID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Reason:       apiutil.ToNullString(req.Reason),
		Enabled:      req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to create team exclusion")
		http.Error(w, "Failed to create team exclusion", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, newTeamExclusionResponse(excl)); err != nil {
		logger.Error().Err(err).Int64("exclusion_id", excl.ID).Msg("Failed to write team exclusion response")
	}
}

// PUT /api/accounts/{accountId}/seasons/{seasonId}/team-exclusions/{exclusionId}
func (h *Handlers) HandleUpdateTeamExclusion(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	exclusionID, err := request.PathID(r, "exclusionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req teamExclusionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.validateDates(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireTeamSeason(ctx, w, r, season.ID, req.TeamSeasonID) {
		return
	}

	rows, err := h.db.Queries.UpdateTeamExclusion(ctx, appdb.UpdateTeamExclusionParams{
		ID:           exclusionID,
		SeasonID:     season.ID,
		TeamSeasonID: req.TeamSeasonID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Reason:       apiutil.ToNullString(req.Reason),
		Enabled:      req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("exclusion_id", exclusionID).Msg("Failed to update team exclusion")
		http.Error(w, "Failed to update team exclusion", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Team exclusion not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/accounts/{accountId}/seasons/{seasonId}/team-exclusions/{exclusionId}
func (h *Handlers) HandleDeleteTeamExclusion(w http.ResponseWriter, r *http.Request) {
	h.deleteExclusion(w, r, "Team exclusion", h.db.Queries.DeleteTeamExclusion)
}

type umpireExclusionRequest struct {
	UmpireID int64 `json:"umpireId" validate:"required,gt=0"`
	exclusionWindow
}

type umpireExclusionResponse struct {
	ID        int64   `json:"id"`
	SeasonID  int64   `json:"seasonId"`
	UmpireID  int64   `json:"umpireId"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Reason    *string `json:"reason,omitempty"`
	Enabled   bool    `json:"enabled"`
}

func newUmpireExclusionResponse(e appdb.UmpireExclusion) umpireExclusionResponse {
	return umpireExclusionResponse{
		ID:        e.ID,
		SeasonID:  e.SeasonID,
		UmpireID:  e.UmpireID,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		Reason:    apiutil.NullStringPtr(e.Reason),
		Enabled:   e.Enabled,
	}
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/umpire-exclusions
func (h *Handlers) HandleListUmpireExclusions(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	exclusions, err := h.db.Queries.ListUmpireExclusions(ctx, season.ID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to list umpire exclusions")
		http.Error(w, "Failed to list umpire exclusions", http.StatusInternalServerError)
		return
	}

	responses := make([]umpireExclusionResponse, 0, len(exclusions))
	for _, e := range exclusions {
		responses = append(responses, newUmpireExclusionResponse(e))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write umpire exclusion list")
	}
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/umpire-exclusions
func (h *Handlers) HandleCreateUmpireExclusion(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req umpireExclusionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.validateDates(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireUmpire(ctx, w, r, req.UmpireID) {
		return
	}

	excl, err := h.db.Queries.CreateUmpireExclusion(ctx, appdb.CreateUmpireExclusionParams{
		SeasonID:  season.ID,
		UmpireID:  req.UmpireID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    apiutil.ToNullString(req.Reason),
		Enabled:   req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to create umpire exclusion")
		http.Error(w, "Failed to create umpire exclusion", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, newUmpireExclusionResponse(excl)); err != nil {
		logger.Error().Err(err).Int64("exclusion_id", excl.ID).Msg("Failed to write umpire exclusion response")
	}
}

// PUT /api/accounts/{accountId}/seasons/{seasonId}/umpire-exclusions/{exclusionId}
func (h *Handlers) HandleUpdateUmpireExclusion(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	exclusionID, err := request.PathID(r, "exclusionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req umpireExclusionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.validateDates(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireUmpire(ctx, w, r, req.UmpireID) {
		return
	}

	rows, err := h.db.Queries.UpdateUmpireExclusion(ctx, appdb.UpdateUmpireExclusionParams{
		ID:        exclusionID,
		SeasonID:  season.ID,
		UmpireID:  req.UmpireID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    apiutil.ToNullString(req.Reason),
		Enabled:   req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("exclusion_id", exclusionID).Msg("Failed to update umpire exclusion")
		http.Error(w, "Failed to update umpire exclusion", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Umpire exclusion not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/accounts/{accountId}/seasons/{seasonId}/umpire-exclusions/{exclusionId}
func (h *Handlers) HandleDeleteUmpireExclusion(w http.ResponseWriter, r *http.Request) {
	h.deleteExclusion(w, r, "Umpire exclusion", h.db.Queries.DeleteUmpireExclusion)
}

// deleteExclusion is the shared delete path for all three exclusion kinds.
func (h *Handlers) deleteExclusion(w http.ResponseWriter, r *http.Request, label string, del func(context.Context, appdb.DeleteExclusionParams) (int64, error)) {
	logger := log.Ctx(r.Context())

	exclusionID, err := request.PathID(r, "exclusionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	rows, err := del(ctx, appdb.DeleteExclusionParams{ID: exclusionID, SeasonID: season.ID})
	if err != nil {
		logger.Error().Err(err).Int64("exclusion_id", exclusionID).Msgf("Failed to delete %s", label)
		http.Error(w, "Failed to delete "+label, http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, label+" not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
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

func (h *Handlers) requireTeamSeason(ctx context.Context, w http.ResponseWriter, r *http.Request, seasonID, teamSeasonID int64) bool {
	if _, err := h.db.Queries.GetTeamSeason(ctx, appdb.GetTeamSeasonParams{ID: teamSeasonID, SeasonID: seasonID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("team_season_id", teamSeasonID).Msg("Failed to load team")
		http.Error(w, "Failed to load team", http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *Handlers) requireUmpire(ctx context.Context, w http.ResponseWriter, r *http.Request, umpireID int64) bool {
	accountID, err := request.AccountIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if _, err := h.db.Queries.GetUmpire(ctx, appdb.GetUmpireParams{ID: umpireID, AccountID: accountID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Umpire not found", http.StatusNotFound)
			return false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("umpire_id", umpireID).Msg("Failed to load umpire")
		http.Error(w, "Failed to load umpire", http.StatusInternalServerError)
		return false
	}
	return true
}
