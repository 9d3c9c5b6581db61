// internal/api/availabilityrules/handlers.go

// Package availabilityrules serves the per-season CRUD endpoints for field
// availability rules and field exclusion dates.
package availabilityrules

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/mattn/go-sqlite3"
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

type ruleRequest struct {
	FieldID               int64   `json:"fieldId" validate:"required,gt=0"`
	StartDate             *string `json:"startDate"`
	EndDate               *string `json:"endDate"`
	DaysOfWeekMask        int64   `json:"daysOfWeekMask"`
	StartTimeLocal        string  `json:"startTimeLocal" validate:"required"`
	EndTimeLocal          string  `json:"endTimeLocal" validate:"required"`
	StartIncrementMinutes int64   `json:"startIncrementMinutes" validate:"required,gt=0"`
	Enabled               bool    `json:"enabled"`
}

type ruleResponse struct {
	ID                    int64   `json:"id"`
	SeasonID              int64   `json:"seasonId"`
	FieldID               int64   `json:"fieldId"`
	StartDate             *string `json:"startDate,omitempty"`
	EndDate               *string `json:"endDate,omitempty"`
	DaysOfWeekMask        int64   `json:"daysOfWeekMask"`
	StartTimeLocal        string  `json:"startTimeLocal"`
	EndTimeLocal          string  `json:"endTimeLocal"`
	StartIncrementMinutes int64   `json:"startIncrementMinutes"`
	Enabled               bool    `json:"enabled"`
}

func newRuleResponse(rule appdb.FieldAvailabilityRule) ruleResponse {
	return ruleResponse{
		ID:                    rule.ID,
		SeasonID:              rule.SeasonID,
		FieldID:               rule.FieldID,
		StartDate:             apiutil.NullStringPtr(rule.StartDate),
		EndDate:               apiutil.NullStringPtr(rule.EndDate),
		DaysOfWeekMask:        rule.DaysOfWeekMask,
		StartTimeLocal:        rule.StartTimeLocal,
		EndTimeLocal:          rule.EndTimeLocal,
		StartIncrementMinutes: rule.StartIncrementMinutes,
		Enabled:               rule.Enabled,
	}
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/field-availability-rules
func (h *Handlers) HandleListRules(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	rules, err := h.db.Queries.ListFieldAvailabilityRules(ctx, season.ID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to list availability rules")
		http.Error(w, "Failed to list availability rules", http.StatusInternalServerError)
		return
	}

	responses := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		responses = append(responses, newRuleResponse(rule))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write availability rule list")
	}
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/field-availability-rules
func (h *Handlers) HandleCreateRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req ruleRequest
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
	if !h.requireField(ctx, w, r, req.FieldID) {
		return
	}

	candidate := appdb.FieldAvailabilityRule{
		SeasonID:              season.ID,
		FieldID:               req.FieldID,
		StartDate:             apiutil.ToNullString(req.StartDate),
		EndDate:               apiutil.ToNullString(req.EndDate),
		DaysOfWeekMask:        req.DaysOfWeekMask,
		StartTimeLocal:        req.StartTimeLocal,
		EndTimeLocal:          req.EndTimeLocal,
		StartIncrementMinutes: req.StartIncrementMinutes,
		Enabled:               req.Enabled,
	}
	if err := availability.ValidateRule(candidate); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule, err := h.db.Queries.CreateFieldAvailabilityRule(ctx, appdb.CreateFieldAvailabilityRuleParams{
		SeasonID:              season.ID,
		FieldID:               req.FieldID,
		StartDate:             apiutil.ToNullString(req.StartDate),
		EndDate:               apiutil.ToNullString(req.EndDate),
		DaysOfWeekMask:        req.DaysOfWeekMask,
		StartTimeLocal:        req.StartTimeLocal,
		EndTimeLocal:          req.EndTimeLocal,
		StartIncrementMinutes: req.StartIncrementMinutes,
		Enabled:               req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to create availability rule")
		http.Error(w, "Failed to create availability rule", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, newRuleResponse(rule)); err != nil {
		logger.Error().Err(err).Int64("rule_id", rule.ID).Msg("Failed to write availability rule response")
	}
}

// PUT /api/accounts/{accountId}/seasons/{seasonId}/field-availability-rules/{ruleId}
func (h *Handlers) HandleUpdateRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ruleID, err := request.PathID(r, "ruleId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req ruleRequest
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
	if !h.requireField(ctx, w, r, req.FieldID) {
		return
	}

	candidate := appdb.FieldAvailabilityRule{
		SeasonID:              season.ID,
		FieldID:               req.FieldID,
		StartDate:             apiutil.ToNullString(req.StartDate),
		EndDate:               apiutil.ToNullString(req.EndDate),
		DaysOfWeekMask:        req.DaysOfWeekMask,
		StartTimeLocal:        req.StartTimeLocal,
		EndTimeLocal:          req.EndTimeLocal,
		StartIncrementMinutes: req.StartIncrementMinutes,
		Enabled:               req.Enabled,
	}
	if err := availability.ValidateRule(candidate); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.db.Queries.UpdateFieldAvailabilityRule(ctx, appdb.UpdateFieldAvailabilityRuleParams{
		ID:                    ruleID,
		SeasonID:              season.ID,
		FieldID:               req.FieldID,
		StartDate:             apiutil.ToNullString(req.StartDate),
		EndDate:               apiutil.ToNullString(req.EndDate),
		DaysOfWeekMask:        req.DaysOfWeekMask,
		StartTimeLocal:        req.StartTimeLocal,
		EndTimeLocal:          req.EndTimeLocal,
		StartIncrementMinutes: req.StartIncrementMinutes,
		Enabled:               req.Enabled,
	})
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", ruleID).Msg("Failed to update availability rule")
		http.Error(w, "Failed to update availability rule", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Availability rule not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/accounts/{accountId}/seasons/{seasonId}/field-availability-rules/{ruleId}
func (h *Handlers) HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ruleID, err := request.PathID(r, "ruleId")
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

	rows, err := h.db.Queries.DeleteFieldAvailabilityRule(ctx, appdb.DeleteFieldAvailabilityRuleParams{
		ID:       ruleID,
		SeasonID: season.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", ruleID).Msg("Failed to delete availability rule")
		http.Error(w, "Failed to delete availability rule", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Availability rule not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type exclusionDateRequest struct {
	FieldID int64   `json:"fieldId" validate:"required,gt=0"`
	Date    string  `json:"date" validate:"required"`
	Note    *string `json:"note"`
	Enabled bool    `json:"enabled"`
}

type exclusionDateResponse struct {
	ID       int64   `json:"id"`
	SeasonID int64   `json:"seasonId"`
	FieldID  int64   `json:"fieldId"`
	Date     string  `json:"date"`
	Note     *string `json:"note,omitempty"`
	Enabled  bool    `json:"enabled"`
}

func newExclusionDateResponse(excl appdb.FieldExclusionDate) exclusionDateResponse {
	return exclusionDateResponse{
		ID:       excl.ID,
		SeasonID: excl.SeasonID,
		FieldID:  excl.FieldID,
		Date:     excl.Date,
		Note:     apiutil.NullStringPtr(excl.Note),
		Enabled:  excl.Enabled,
	}
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/field-exclusion-dates
func (h *Handlers) HandleListExclusionDates(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	exclusions, err := h.db.Queries.ListFieldExclusionDates(ctx, season.ID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to list field exclusion dates")
		http.Error(w, "Failed to list field exclusion dates", http.StatusInternalServerError)
		return
	}

	responses := make([]exclusionDateResponse, 0, len(exclusions))
	for _, excl := range exclusions {
		responses = append(responses, newExclusionDateResponse(excl))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, responses); err != nil {
		logger.Error().Err(err).Msg("Failed to write field exclusion date list")
	}
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/field-exclusion-dates
func (h *Handlers) HandleCreateExclusionDate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req exclusionDateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := availability.ParseDate(req.Date, time.UTC); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireField(ctx, w, r, req.FieldID) {
		return
	}

	excl, err := h.db.Queries.CreateFieldExclusionDate(ctx, appdb.CreateFieldExclusionDateParams{
		SeasonID: season.ID,
		FieldID:  req.FieldID,
		Date:     req.Date,
		Note:     apiutil.ToNullString(req.Note),
		Enabled:  req.Enabled,
	})
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "An exclusion already exists for this field and date", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("season_id", season.ID).Msg("Failed to create field exclusion date")
		http.Error(w, "Failed to create field exclusion date", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, newExclusionDateResponse(excl)); err != nil {
		logger.Error().Err(err).Int64("exclusion_id", excl.ID).Msg("Failed to write field exclusion date response")
	}
}

// PUT /api/accounts/{accountId}/seasons/{seasonId}/field-exclusion-dates/{exclusionId}
func (h *Handlers) HandleUpdateExclusionDate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	exclusionID, err := request.PathID(r, "exclusionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req exclusionDateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := availability.ParseDate(req.Date, time.UTC); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	season, ok := h.requireSeason(ctx, w, r)
	if !ok {
		return
	}

	rows, err := h.db.Queries.UpdateFieldExclusionDate(ctx, appdb.UpdateFieldExclusionDateParams{
		ID:       exclusionID,
		SeasonID: season.ID,
		Date:     req.Date,
		Note:     apiutil.ToNullString(req.Note),
		Enabled:  req.Enabled,
	})
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "An exclusion already exists for this field and date", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("exclusion_id", exclusionID).Msg("Failed to update field exclusion date")
		http.Error(w, "Failed to update field exclusion date", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Field exclusion date not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/accounts/{accountId}/seasons/{seasonId}/field-exclusion-dates/{exclusionId}
func (h *Handlers) HandleDeleteExclusionDate(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.db.Queries.DeleteFieldExclusionDate(ctx, appdb.DeleteFieldExclusionDateParams{
		ID:       exclusionID,
		SeasonID: season.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("exclusion_id", exclusionID).Msg("Failed to delete field exclusion date")
		http.Error(w, "Failed to delete field exclusion date", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Field exclusion date not found", http.StatusNotFound)
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

func (h *Handlers) requireField(ctx context.Context, w http.ResponseWriter, r *http.Request, fieldID int64) bool {
	accountID, err := request.AccountIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if _, err := h.db.Queries.GetField(ctx, appdb.GetFieldParams{ID: fieldID, AccountID: accountID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Field not found", http.StatusNotFound)
			return false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("field_id", fieldID).Msg("Failed to load field")
		http.Error(w, "Failed to load field", http.StatusInternalServerError)
		return false
	}
	return true
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
