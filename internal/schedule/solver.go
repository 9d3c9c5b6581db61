// internal/schedule/solver.go
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bstan/leaguesched/internal/availability"
	"github.com/bstan/leaguesched/internal/db"
)

var (
	ErrInvalidObjective    = errors.New("unsupported objective")
	ErrNoFields            = errors.New("problem spec has no fields")
	ErrInvalidSeasonWindow = errors.New("season end date is before its start date")
	ErrInvalidGameDuration = errors.New("game duration must be positive")
)

// Solve statuses.
const (
	SolveStatusComplete = "complete"
	SolveStatusPartial  = "partial"
)

// SolveOptions tunes one solver run. Zero budgets mean unbounded.
type SolveOptions struct {
	Objective  string
	StepBudget int
	TimeBudget time.Duration
}

// Solve assigns a field, start time, and umpire crew to as many games in the
// spec as possible. It never fails because a game is infeasible; infeasible
// games are reported in the result's Unscheduled list with a readable reason.
// It fails only on malformed input, and then returns no partial result.
//
// Output is deterministic for identical input: games are processed by earliest
// feasible date then id, and candidates are tried by date, start time, field
// id, umpire id. The RunID alone is fresh per call.
func Solve(spec *ProblemSpec, opts SolveOptions) (*SolveResult, error) {
	if opts.Objective != ObjectiveMaximizeScheduledGames {
		return nil, fmt.Errorf("%w: %q", ErrInvalidObjective, opts.Objective)
	}
	if len(spec.Fields) == 0 {
		return nil, ErrNoFields
	}
	if spec.GameDuration <= 0 {
		return nil, ErrInvalidGameDuration
	}
	if spec.SeasonEnd.Before(spec.SeasonStart) {
		return nil, ErrInvalidSeasonWindow
	}

	// Work on a copy with fields and umpires in id order: the tie-break policy
	// depends on it and callers are not required to pre-sort.
	sorted := *spec
	sorted.Fields = append([]db.Field(nil), spec.Fields...)
	sort.Slice(sorted.Fields, func(i, j int) bool { return sorted.Fields[i].ID < sorted.Fields[j].ID })
	sorted.Umpires = append([]db.Umpire(nil), spec.Umpires...)
	sort.Slice(sorted.Umpires, func(i, j int) bool { return sorted.Umpires[i].ID < sorted.Umpires[j].ID })

	s := &solver{
		spec:       &sorted,
		opts:       opts,
		fieldBusy:  make(map[int64][]interval),
		umpireBusy: make(map[int64][]interval),
		candCache:  make(map[candKey][]time.Time),
	}
	if opts.TimeBudget > 0 {
		s.deadline = time.Now().Add(opts.TimeBudget)
	}
	for d := spec.SeasonStart; !d.After(spec.SeasonEnd); d = d.AddDate(0, 0, 1) {
		s.dates = append(s.dates, d)
	}

	ordered := s.orderGames()

	result := &SolveResult{
		RunID:   uuid.New().String(),
		Metrics: Metrics{TotalGames: len(ordered)},
	}

	budgetExhausted := false
	for _, game := range ordered {
		if budgetExhausted || s.exhausted() {
			budgetExhausted = true
			result.Unscheduled = append(result.Unscheduled, UnscheduledGame{
				GameID: game.ID,
				Reason: ReasonBudgetExceeded,
			})
			continue
		}

		assignment, reason := s.tryAssign(game)
		if assignment == nil {
			if reason == ReasonBudgetExceeded {
				budgetExhausted = true
			}
			result.Unscheduled = append(result.Unscheduled, UnscheduledGame{
				GameID: game.ID,
				Reason: reason,
			})
			continue
		}
		result.Assignments = append(result.Assignments, *assignment)
		result.Metrics.ScheduledGames++
	}

	if result.Metrics.ScheduledGames == result.Metrics.TotalGames {
		result.Status = SolveStatusComplete
	} else {
		result.Status = SolveStatusPartial
	}
	return result, nil
}

type interval struct {
	start, end time.Time
}

func (a interval) overlaps(b interval) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

type candKey struct {
	fieldID int64
	day     string
}

type solver struct {
	spec *ProblemSpec
	opts SolveOptions

	dates      []time.Time
	fieldBusy  map[int64][]interval
	umpireBusy map[int64][]interval
	candCache  map[candKey][]time.Time

	steps    int
	deadline time.Time
}

// step consumes one unit of the search budget and reports whether the solver
// must stop.
func (s *solver) step() bool {
	s.steps++
	return s.exhausted()
}

func (s *solver) exhausted() bool {
	if s.opts.StepBudget > 0 && s.steps > s.opts.StepBudget {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return true
	}
	return false
}

// orderGames sorts the problem spec's games by earliest feasible date, then id, so
// repeated solves on identical input walk the search space identically.
func (s *solver) orderGames() []db.Game {
	type orderedGame struct {
		game     db.Game
		feasible int // index into s.dates, len(s.dates) if none
	}

	ordered := make([]orderedGame, 0, len(s.spec.Games))
	for _, game := range s.spec.Games {
		feasible := len(s.dates)
		for i, date := range s.dates {
			if !s.anyWindow(date) {
				continue
			}
			if s.seasonExcluded(date) || s.teamExcluded(game, date) {
				continue
			}
			feasible = i
			break
		}
		ordered = append(ordered, orderedGame{game: game, feasible: feasible})
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].feasible != ordered[j].feasible {
			return ordered[i].feasible < ordered[j].feasible
		}
		return ordered[i].game.ID < ordered[j].game.ID
	})

	games := make([]db.Game, len(ordered))
	for i, og := range ordered {
		games[i] = og.game
	}
	return games
}

// tryAssign finds the earliest feasible (field, start, umpire crew) triple not
// yet consumed in this run. On failure it returns the most specific reason
// observed during the scan.
func (s *solver) tryAssign(game db.Game) (*Assignment, string) {
	var (
		hadWindow     bool
		slotTaken     bool
		umpireShort   bool
		teamBlocked   bool
		seasonBlocked bool
	)

	for _, date := range s.dates {
		if s.step() {
			return nil, ReasonBudgetExceeded
		}
		if !s.anyWindow(date) {
			continue
		}
		hadWindow = true

		if s.seasonExcluded(date) {
			seasonBlocked = true
			continue
		}
		if s.teamExcluded(game, date) {
			teamBlocked = true
			continue
		}

		// Fields are listed in id order; candidate starts are sorted. The
		// earliest start wins across fields, with the lower field id breaking
		// ties.
		for _, start := range s.startsForDate(date) {
			for _, field := range s.spec.Fields {
				if s.step() {
					return nil, ReasonBudgetExceeded
				}
				if !s.fieldHasStart(field.ID, date, start) {
					continue
				}
				slot := interval{start: start, end: start.Add(s.spec.GameDuration)}
				if s.busy(s.fieldBusy[field.ID], slot) {
					slotTaken = true
					continue
				}

				crew, ok := s.pickUmpires(date, slot)
				if !ok {
					umpireShort = true
					continue
				}

				s.fieldBusy[field.ID] = append(s.fieldBusy[field.ID], slot)
				for _, umpireID := range crew {
					s.umpireBusy[umpireID] = append(s.umpireBusy[umpireID], slot)
				}
				return &Assignment{
					GameID:    game.ID,
					FieldID:   field.ID,
					StartTime: slot.start,
					EndTime:   slot.end,
					UmpireIDs: crew,
				}, ""
			}
		}
	}

	switch {
	case umpireShort:
		return nil, ReasonNoUmpire
	case teamBlocked:
		return nil, ReasonTeamExclusion
	case seasonBlocked:
		return nil, ReasonSeasonExclusion
	case slotTaken:
		return nil, ReasonNoOpenSlot
	case hadWindow:
		return nil, ReasonNoOpenSlot
	default:
		return nil, ReasonNoFieldAvailability
	}
}

// startsForDate returns the sorted union of candidate starts across all
// fields for the date.
func (s *solver) startsForDate(date time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	var starts []time.Time
	for _, field := range s.spec.Fields {
		for _, start := range s.candidates(field.ID, date) {
			if _, ok := seen[start]; ok {
				continue
			}
			seen[start] = struct{}{}
			starts = append(starts, start)
		}
	}
	// Candidate lists per field are sorted; the union generally is not.
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts
}

func (s *solver) fieldHasStart(fieldID int64, date time.Time, start time.Time) bool {
	for _, cand := range s.candidates(fieldID, date) {
		if cand.Equal(start) {
			return true
		}
	}
	return false
}

func (s *solver) candidates(fieldID int64, date time.Time) []time.Time {
	key := candKey{fieldID: fieldID, day: date.Format(availability.DateLayout)}
	if starts, ok := s.candCache[key]; ok {
		return starts
	}
	starts := availability.CandidateStarts(
		s.spec.AvailabilityRules, s.spec.FieldExclusions,
		fieldID, date, s.spec.GameDuration,
	)
	s.candCache[key] = starts
	return starts
}

func (s *solver) anyWindow(date time.Time) bool {
	for _, field := range s.spec.Fields {
		if len(s.candidates(field.ID, date)) > 0 {
			return true
		}
	}
	return false
}

func (s *solver) busy(intervals []interval, slot interval) bool {
	for _, iv := range intervals {
		if iv.overlaps(slot) {
			return true
		}
	}
	return false
}

// pickUmpires selects the lowest-id crew of available umpires for the slot.
// A zero UmpiresPerGame means games run without assigned officials.
func (s *solver) pickUmpires(date time.Time, slot interval) ([]int64, bool) {
	if s.spec.UmpiresPerGame == 0 {
		return nil, true
	}
	crew := make([]int64, 0, s.spec.UmpiresPerGame)
	for _, umpire := range s.spec.Umpires {
		if s.umpireExcluded(umpire.ID, date) {
			continue
		}
		if s.busy(s.umpireBusy[umpire.ID], slot) {
			continue
		}
		crew = append(crew, umpire.ID)
		if len(crew) == s.spec.UmpiresPerGame {
			return crew, true
		}
	}
	return nil, false
}

func dateWithin(day, startDate, endDate string) bool {
	return day >= startDate && day <= endDate
}

func (s *solver) seasonExcluded(date time.Time) bool {
	day := date.Format(availability.DateLayout)
	for _, excl := range s.spec.SeasonExclusions {
		if excl.Enabled && dateWithin(day, excl.StartDate, excl.EndDate) {
			return true
		}
	}
	return false
}

func (s *solver) teamExcluded(game db.Game, date time.Time) bool {
	day := date.Format(availability.DateLayout)
	for _, excl := range s.spec.TeamExclusions {
		if !excl.Enabled {
			continue
		}
		if excl.TeamSeasonID != game.HomeTeamSeasonID && excl.TeamSeasonID != game.VisitorTeamSeasonID {
			continue
		}
		if dateWithin(day, excl.StartDate, excl.EndDate) {
			return true
		}
	}
	return false
}

func (s *solver) umpireExcluded(umpireID int64, date time.Time) bool {
	day := date.Format(availability.DateLayout)
	for _, excl := range s.spec.UmpireExclusions {
		if excl.Enabled && excl.UmpireID == umpireID && dateWithin(day, excl.StartDate, excl.EndDate) {
			return true
		}
	}
	return false
}
