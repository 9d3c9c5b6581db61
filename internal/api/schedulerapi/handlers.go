// internal/api/schedulerapi/handlers.go

// Package schedulerapi serves the scheduling endpoints: problem spec preview,
// solve, and apply. Solve results are kept in a best-effort run cache; the
// apply request body stays authoritative so a cache eviction never blocks an
// apply.
package schedulerapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bstan/leaguesched/internal/api/apiutil"
	"github.com/bstan/leaguesched/internal/config"
	appdb "github.com/bstan/leaguesched/internal/db"
	"github.com/bstan/leaguesched/internal/request"
	"github.com/bstan/leaguesched/internal/runcache"
	"github.com/bstan/leaguesched/internal/schedule"
)

const (
	queryTimeout = 5 * time.Second
	applyTimeout = 30 * time.Second

	idempotencyKeyHeader = "Idempotency-Key"
)

type Handlers struct {
	db      *appdb.DB
	cache   *runcache.Cache
	cfg     *config.Config
	applier *schedule.Applier
}

func New(database *appdb.DB, cache *runcache.Cache, cfg *config.Config) *Handlers {
	return &Handlers{
		db:      database,
		cache:   cache,
		cfg:     cfg,
		applier: schedule.NewApplier(database),
	}
}

// constraints override the configured scheduling defaults for one request.
type constraints struct {
	GameDurationMinutes int `json:"gameDurationMinutes" validate:"omitempty,gt=0"`
	UmpiresPerGame      int `json:"umpiresPerGame" validate:"omitempty,gte=0"`
}

func (h *Handlers) buildParams(accountID, seasonID int64, gameIDs []int64, leagueSeasonID, teamSeasonID int64, c constraints) schedule.BuildParams {
	duration := h.cfg.GameDuration()
	if c.GameDurationMinutes > 0 {
		duration = time.Duration(c.GameDurationMinutes) * time.Minute
	}
	umpires := h.cfg.Scheduler.UmpiresPerGame
	if c.UmpiresPerGame > 0 {
		umpires = c.UmpiresPerGame
	}
	return schedule.BuildParams{
		AccountID:      accountID,
		SeasonID:       seasonID,
		GameIDs:        gameIDs,
		LeagueSeasonID: leagueSeasonID,
		TeamSeasonID:   teamSeasonID,
		GameDuration:   duration,
		UmpiresPerGame: umpires,
	}
}

type previewGame struct {
	ID                  int64  `json:"id"`
	LeagueSeasonID      int64  `json:"leagueSeasonId"`
	HomeTeamSeasonID    int64  `json:"homeTeamSeasonId"`
	VisitorTeamSeasonID int64  `json:"visitorTeamSeasonId"`
	GameStatus          string `json:"gameStatus"`
	Version             int64  `json:"version"`
}

type previewField struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type previewUmpire struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type previewRule struct {
	ID                    int64   `json:"id"`
	FieldID               int64   `json:"fieldId"`
	StartDate             *string `json:"startDate,omitempty"`
	EndDate               *string `json:"endDate,omitempty"`
	DaysOfWeekMask        int64   `json:"daysOfWeekMask"`
	StartTimeLocal        string  `json:"startTimeLocal"`
	EndTimeLocal          string  `json:"endTimeLocal"`
	StartIncrementMinutes int64   `json:"startIncrementMinutes"`
}

type previewFieldExclusion struct {
	ID      int64  `json:"id"`
	FieldID int64  `json:"fieldId"`
	Date    string `json:"date"`
}

type previewExclusionWindow struct {
	ID           int64  `json:"id"`
	TeamSeasonID int64  `json:"teamSeasonId,omitempty"`
	UmpireID     int64  `json:"umpireId,omitempty"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

type problemSpecPreview struct {
	SeasonID         int64  `json:"seasonId"`
	SeasonStartDate  string `json:"seasonStartDate"`
	SeasonEndDate    string `json:"seasonEndDate"`
	GeneratedAt      string `json:"generatedAt"`
	GameDurationMins int    `json:"gameDurationMinutes"`
	UmpiresPerGame   int    `json:"umpiresPerGame"`

	Games             []previewGame            `json:"games"`
	Fields            []previewField           `json:"fields"`
	Umpires           []previewUmpire          `json:"umpires"`
	AvailabilityRules []previewRule            `json:"availabilityRules"`
	FieldExclusions   []previewFieldExclusion  `json:"fieldExclusionDates"`
	SeasonExclusions  []previewExclusionWindow `json:"seasonExclusions"`
	TeamExclusions    []previewExclusionWindow `json:"teamExclusions"`
	UmpireExclusions  []previewExclusionWindow `json:"umpireExclusions"`
}

func newPreview(spec *schedule.ProblemSpec) problemSpecPreview {
	preview := problemSpecPreview{
		SeasonID:          spec.SeasonID,
		SeasonStartDate:   spec.SeasonStart.Format("2006-01-02"),
		SeasonEndDate:     spec.SeasonEnd.Format("2006-01-02"),
		GeneratedAt:       spec.GeneratedAt.UTC().Format(time.RFC3339),
		GameDurationMins:  int(spec.GameDuration / time.Minute),
		UmpiresPerGame:    spec.UmpiresPerGame,
		Games:             make([]previewGame, 0, len(spec.Games)),
		Fields:            make([]previewField, 0, len(spec.Fields)),
		Umpires:           make([]previewUmpire, 0, len(spec.Umpires)),
		AvailabilityRules: make([]previewRule, 0, len(spec.AvailabilityRules)),
		FieldExclusions:   make([]previewFieldExclusion, 0, len(spec.FieldExclusions)),
		SeasonExclusions:  make([]previewExclusionWindow, 0, len(spec.SeasonExclusions)),
		TeamExclusions:    make([]previewExclusionWindow, 0, len(spec.TeamExclusions)),
		UmpireExclusions:  make([]previewExclusionWindow, 0, len(spec.UmpireExclusions)),
	}
	for _, g := range spec.Games {
		preview.Games = append(preview.Games, previewGame{
			ID:                  g.ID,
			LeagueSeasonID:      g.LeagueSeasonID,
			HomeTeamSeasonID:    g.HomeTeamSeasonID,
			VisitorTeamSeasonID: g.VisitorTeamSeasonID,
			GameStatus:          g.GameStatus,
			Version:             g.Version,
		})
	}
	for _, f := range spec.Fields {
		preview.Fields = append(preview.Fields, previewField{ID: f.ID, Name: f.Name})
	}
	for _, u := range spec.Umpires {
		preview.Umpires = append(preview.Umpires, previewUmpire{ID: u.ID, Name: u.Name})
	}
	for _, rule := range spec.AvailabilityRules {
		pr := previewRule{
			ID:                    rule.ID,
			FieldID:               rule.FieldID,
			DaysOfWeekMask:        rule.DaysOfWeekMask,
			StartTimeLocal:        rule.StartTimeLocal,
			EndTimeLocal:          rule.EndTimeLocal,
			StartIncrementMinutes: rule.StartIncrementMinutes,
		}
		if rule.StartDate.Valid {
			pr.StartDate = &rule.StartDate.String
		}
		if rule.EndDate.Valid {
			pr.EndDate = &rule.EndDate.String
		}
		preview.AvailabilityRules = append(preview.AvailabilityRules, pr)
	}
	for _, e := range spec.FieldExclusions {
		preview.FieldExclusions = append(preview.FieldExclusions, previewFieldExclusion{ID: e.ID, FieldID: e.FieldID, Date: e.Date})
	}
	for _, e := range spec.SeasonExclusions {
		preview.SeasonExclusions = append(preview.SeasonExclusions, previewExclusionWindow{ID: e.ID, StartDate: e.StartDate, EndDate: e.EndDate})
	}
	for _, e := range spec.TeamExclusions {
		preview.TeamExclusions = append(preview.TeamExclusions, previewExclusionWindow{ID: e.ID, TeamSeasonID: e.TeamSeasonID, StartDate: e.StartDate, EndDate: e.EndDate})
	}
	for _, e := range spec.UmpireExclusions {
		preview.UmpireExclusions = append(preview.UmpireExclusions, previewExclusionWindow{ID: e.ID, UmpireID: e.UmpireID, StartDate: e.StartDate, EndDate: e.EndDate})
	}
	return preview
}

// GET /api/accounts/{accountId}/seasons/{seasonId}/scheduler/problem-spec-preview
//
// Optional query params: gameIds (comma separated), leagueSeasonId,
// teamSeasonId.
func (h *Handlers) HandleProblemSpecPreview(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	accountID, seasonID, ok := pathScope(w, r)
	if !ok {
		return
	}

	gameIDs, err := parseGameIDs(r.URL.Query().Get("gameIds"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	leagueSeasonID, err := parseOptionalID(r.URL.Query().Get("leagueSeasonId"), "leagueSeasonId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	teamSeasonID, err := parseOptionalID(r.URL.Query().Get("teamSeasonId"), "teamSeasonId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	spec, err := schedule.BuildProblemSpec(ctx, h.db, h.buildParams(accountID, seasonID, gameIDs, leagueSeasonID, teamSeasonID, constraints{}))
	if err != nil {
		if errors.Is(err, schedule.ErrSeasonNotFound) {
			http.Error(w, "Season not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("season_id", seasonID).Msg("Failed to build problem spec")
		http.Error(w, "Failed to build problem spec", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newPreview(spec)); err != nil {
		logger.Error().Err(err).Msg("Failed to write problem spec preview")
	}
}

type solveRequest struct {
	Objectives     []string    `json:"objectives" validate:"required,min=1,max=1"`
	GameIDs        []int64     `json:"gameIds"`
	LeagueSeasonID int64       `json:"leagueSeasonId" validate:"omitempty,gt=0"`
	TeamSeasonID   int64       `json:"teamSeasonId" validate:"omitempty,gt=0"`
	Constraints    constraints `json:"constraints"`
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/scheduler/solve
//
// With an Idempotency-Key header, a repeated call returns the first call's
// result (same runId included) for as long as the run cache holds it.
func (h *Handlers) HandleSolve(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	accountID, seasonID, ok := pathScope(w, r)
	if !ok {
		return
	}

	var req solveRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if key := r.Header.Get(idempotencyKeyHeader); key != "" {
		if cached := h.cache.GetIdempotent(idempotencyScope(accountID, seasonID, key)); cached != nil {
			logger.Info().Str("run_id", cached.RunID).Msg("Returning cached solve result for idempotency key")
			if err := apiutil.WriteJSON(w, http.StatusOK, cached); err != nil {
				logger.Error().Err(err).Msg("Failed to write cached solve result")
			}
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout+h.cfg.SolverTimeBudget())
	defer cancel()

	spec, err := schedule.BuildProblemSpec(ctx, h.db, h.buildParams(accountID, seasonID, req.GameIDs, req.LeagueSeasonID, req.TeamSeasonID, req.Constraints))
	if err != nil {
		if errors.Is(err, schedule.ErrSeasonNotFound) {
			http.Error(w, "Season not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("season_id", seasonID).Msg("Failed to build problem spec")
		http.Error(w, "Failed to build problem spec", http.StatusInternalServerError)
		return
	}

	result, err := schedule.Solve(spec, schedule.SolveOptions{
		Objective:  req.Objectives[0],
		StepBudget: h.cfg.Scheduler.SolverStepBudget,
		TimeBudget: h.cfg.SolverTimeBudget(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.cache.Put(result)
	if key := r.Header.Get(idempotencyKeyHeader); key != "" {
		h.cache.PutIdempotent(idempotencyScope(accountID, seasonID, key), result)
	}

	logger.Info().
		Str("run_id", result.RunID).
		Str("status", result.Status).
		Int("total_games", result.Metrics.TotalGames).
		Int("scheduled_games", result.Metrics.ScheduledGames).
		Msg("Solve completed")

	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to write solve result")
	}
}

type applyRequest struct {
	RunID       string                `json:"runId" validate:"required"`
	Mode        string                `json:"mode" validate:"required,oneof=all subset"`
	GameIDs     []int64               `json:"gameIds"`
	Assignments []schedule.Assignment `json:"assignments" validate:"required,min=1"`
	Constraints constraints           `json:"constraints"`
}

// POST /api/accounts/{accountId}/seasons/{seasonId}/scheduler/apply
//
// The body's assignments are authoritative. When the run cache still holds the
// run, assignments that were not part of it are skipped rather than committed.
func (h *Handlers) HandleApply(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if _, _, ok := pathScope(w, r); !ok {
		return
	}

	var req applyRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Unrequested assignments in subset mode are ignored outright, so they
	// never surface as run-membership skips either.
	assignments := req.Assignments
	if req.Mode == schedule.ApplyModeSubset && len(req.GameIDs) > 0 {
		assignments = filterToSubset(assignments, req.GameIDs)
	}
	var preskipped []schedule.SkippedGame
	if cached := h.cache.Get(req.RunID); cached != nil {
		assignments, preskipped = filterToRun(assignments, cached)
	}

	var result *schedule.ApplyResult
	if len(assignments) == 0 {
		// Everything was filtered out before commit. Per-game conditions are
		// data, not request errors.
		result = &schedule.ApplyResult{Status: schedule.ApplyStatusApplied}
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), applyTimeout)
		defer cancel()

		var err error
		result, err = h.applier.Apply(ctx, schedule.ApplyParams{
			RunID:       req.RunID,
			Mode:        req.Mode,
			GameIDs:     req.GameIDs,
			Assignments: assignments,
		})
		if err != nil {
			if errors.Is(err, schedule.ErrInvalidApplyMode) ||
				errors.Is(err, schedule.ErrEmptySubset) ||
				errors.Is(err, schedule.ErrNoAssignments) ||
				errors.Is(err, schedule.ErrMissingRunID) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.Error().Err(err).Str("run_id", req.RunID).Msg("Apply failed")
			http.Error(w, "Apply failed", http.StatusInternalServerError)
			return
		}
	}

	if len(preskipped) > 0 {
		result.Skipped = append(result.Skipped, preskipped...)
		result.Status = schedule.ApplyStatusPartial
	}

	logger.Info().
		Str("run_id", req.RunID).
		Str("status", result.Status).
		Int("applied", len(result.AppliedGameIDs)).
		Int("skipped", len(result.Skipped)).
		Msg("Apply completed")

	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Str("run_id", req.RunID).Msg("Failed to write apply result")
	}
}

// filterToSubset keeps only assignments for the requested game ids.
func filterToSubset(assignments []schedule.Assignment, gameIDs []int64) []schedule.Assignment {
	requested := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		requested[id] = true
	}
	kept := assignments[:0:0]
	for _, a := range assignments {
		if requested[a.GameID] {
			kept = append(kept, a)
		}
	}
	return kept
}

// filterToRun drops assignments that are not part of the cached run they claim
// to come from.
func filterToRun(assignments []schedule.Assignment, run *schedule.SolveResult) ([]schedule.Assignment, []schedule.SkippedGame) {
	inRun := make(map[int64]bool, len(run.Assignments))
	for _, a := range run.Assignments {
		inRun[a.GameID] = true
	}

	kept := assignments[:0:0]
	var skipped []schedule.SkippedGame
	for _, a := range assignments {
		if inRun[a.GameID] {
			kept = append(kept, a)
			continue
		}
		skipped = append(skipped, schedule.SkippedGame{GameID: a.GameID, Reason: schedule.SkipReasonAssignmentNotInRun})
	}
	return kept, skipped
}

func idempotencyScope(accountID, seasonID int64, key string) string {
	return strconv.FormatInt(accountID, 10) + ":" + strconv.FormatInt(seasonID, 10) + ":" + key
}

func pathScope(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	accountID, err := request.AccountIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, 0, false
	}
	seasonID, err := request.SeasonIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, 0, false
	}
	return accountID, seasonID, true
}

func parseGameIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, ok := request.ParseID(part)
		if !ok {
			return nil, fmt.Errorf("invalid game id %q", strings.TrimSpace(part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOptionalID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, ok := request.ParseID(raw)
	if !ok {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
