// internal/schedule/types.go

// Package schedule implements the season scheduling engine: problem spec
// assembly, the constraint solver, and the apply step that commits a solve
// proposal onto persisted games.
package schedule

import (
	"time"

	"github.com/bstan/leaguesched/internal/db"
)

// Objectives accepted by the solver. The result shape is objective-independent
// so new objectives can be added without breaking callers.
const (
	ObjectiveMaximizeScheduledGames = "maximize_scheduled_games"
)

// Reasons attached to games the solver could not place. These are data, not
// errors: callers surface them verbatim.
const (
	ReasonNoFieldAvailability = "no field availability"
	ReasonNoOpenSlot          = "all feasible field time slots already assigned"
	ReasonTeamExclusion       = "team exclusion conflict"
	ReasonSeasonExclusion     = "season exclusion conflict"
	ReasonNoUmpire            = "no umpire available"
	ReasonBudgetExceeded      = "solver budget exceeded"
)

// Reasons attached to games the apply step skipped.
const (
	SkipReasonAlreadyScheduled     = "game already scheduled"
	SkipReasonGameModified         = "game modified since solve"
	SkipReasonFieldUnavailable     = "field no longer available"
	SkipReasonUmpireUnavailable    = "umpire no longer available"
	SkipReasonAssignmentNotInRun   = "no assignment for game in this run"
	SkipReasonGameMissing          = "game not found"
	SkipReasonGameNotSchedulable   = "game is not schedulable"
)

// ProblemSpec is the immutable snapshot of games plus constraints the solver
// consumes. It is assembled in a single read transaction and never mutated.
type ProblemSpec struct {
	AccountID   int64
	SeasonID    int64
	GeneratedAt time.Time

	SeasonStart time.Time
	SeasonEnd   time.Time

	Games   []db.Game
	Fields  []db.Field
	Umpires []db.Umpire

	AvailabilityRules []db.FieldAvailabilityRule
	FieldExclusions   []db.FieldExclusionDate
	SeasonExclusions  []db.SeasonExclusion
	TeamExclusions    []db.TeamExclusion
	UmpireExclusions  []db.UmpireExclusion

	GameDuration   time.Duration
	UmpiresPerGame int
}

// Assignment is one proposed placement of a game.
type Assignment struct {
	GameID    int64     `json:"gameId"`
	FieldID   int64     `json:"fieldId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	UmpireIDs []int64   `json:"umpireIds"`
}

// UnscheduledGame records a game the solver could not place and why.
type UnscheduledGame struct {
	GameID int64  `json:"gameId"`
	Reason string `json:"reason"`
}

// Metrics summarizes a solve run.
type Metrics struct {
	TotalGames     int `json:"totalGames"`
	ScheduledGames int `json:"scheduledGames"`
}

// SolveResult is the proposal produced by one solver run. It is immutable once
// produced and identified by RunID so the apply step can reference exactly the
// proposal the caller reviewed. It is not the authoritative schedule.
type SolveResult struct {
	RunID       string            `json:"runId"`
	Status      string            `json:"status"`
	Metrics     Metrics           `json:"metrics"`
	Assignments []Assignment      `json:"assignments"`
	Unscheduled []UnscheduledGame `json:"unscheduled"`
}

// Apply modes.
const (
	ApplyModeAll    = "all"
	ApplyModeSubset = "subset"
)

// Apply statuses.
const (
	ApplyStatusApplied = "applied"
	ApplyStatusPartial = "partial"
)

// SkippedGame records a single game the apply step could not commit.
type SkippedGame struct {
	GameID int64  `json:"gameId"`
	Reason string `json:"reason"`
}

// ApplyResult reports the per-game outcome of committing a solve proposal.
type ApplyResult struct {
	Status         string        `json:"status"`
	AppliedGameIDs []int64       `json:"appliedGameIds"`
	Skipped        []SkippedGame `json:"skipped"`
}
