// internal/schedule/apply.go
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	appdb "github.com/bstan/leaguesched/internal/db"
)

var (
	ErrInvalidApplyMode = errors.New("apply mode must be 'all' or 'subset'")
	ErrEmptySubset      = errors.New("subset apply requires at least one game id")
	ErrNoAssignments    = errors.New("apply requires assignments")
	ErrMissingRunID     = errors.New("run id is required")
)

// SkipReasonCanceled marks games left uncommitted when the apply call's
// context expired. Games committed before the deadline stay committed.
const SkipReasonCanceled = "apply canceled before game was committed"

// ApplyParams selects which of a solve run's assignments to commit.
type ApplyParams struct {
	RunID       string
	Mode        string
	GameIDs     []int64
	Assignments []Assignment
}

// Applier commits solve proposals onto persisted game records. It is the only
// part of the scheduling engine with side effects.
type Applier struct {
	db *appdb.DB
}

func NewApplier(database *appdb.DB) *Applier {
	return &Applier{db: database}
}

// skipErr aborts a single game's transaction and records the game as skipped
// without failing the overall apply.
type skipErr struct {
	reason string
}

func (e skipErr) Error() string { return e.reason }

// Apply commits the selected assignments, one transaction per game, with
// optimistic re-validation against the current persisted schedule. A conflict
// found at commit time skips that game only; the call fails outright only on
// malformed input or persistence breakdown. Re-applying the same run is
// idempotent: games already carrying their proposed assignment count as
// applied without new writes.
func (a *Applier) Apply(ctx context.Context, params ApplyParams) (*ApplyResult, error) {
	if params.RunID == "" {
		return nil, ErrMissingRunID
	}
	if params.Mode != ApplyModeAll && params.Mode != ApplyModeSubset {
		return nil, fmt.Errorf("%w: %q", ErrInvalidApplyMode, params.Mode)
	}
	if params.Mode == ApplyModeSubset && len(params.GameIDs) == 0 {
		return nil, ErrEmptySubset
	}
	if len(params.Assignments) == 0 {
		return nil, ErrNoAssignments
	}

	subset := make(map[int64]struct{}, len(params.GameIDs))
	for _, id := range params.GameIDs {
		subset[id] = struct{}{}
	}

	assignments := append([]Assignment(nil), params.Assignments...)
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].GameID < assignments[j].GameID })

	result := &ApplyResult{Status: ApplyStatusApplied}

	for _, assignment := range assignments {
		if params.Mode == ApplyModeSubset {
			// Assignments outside the subset are ignored, not skipped.
			if _, ok := subset[assignment.GameID]; !ok {
				continue
			}
		}

		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, SkippedGame{
				GameID: assignment.GameID,
				Reason: SkipReasonCanceled,
			})
			continue
		}

		err := a.applyOne(ctx, assignment)
		if err == nil {
			result.AppliedGameIDs = append(result.AppliedGameIDs, assignment.GameID)
			continue
		}

		var skip skipErr
		if errors.As(err, &skip) {
			result.Skipped = append(result.Skipped, SkippedGame{
				GameID: assignment.GameID,
				Reason: skip.reason,
			})
			continue
		}
		return nil, fmt.Errorf("apply game %d: %w", assignment.GameID, err)
	}

	if len(result.Skipped) > 0 {
		result.Status = ApplyStatusPartial
	}
	return result, nil
}

// sameCrew reports whether two umpire crews contain the same ids, order aside.
func sameCrew(stored, proposed []int64) bool {
	if len(stored) != len(proposed) {
		return false
	}
	sortedProposed := append([]int64(nil), proposed...)
	sort.Slice(sortedProposed, func(i, j int) bool { return sortedProposed[i] < sortedProposed[j] })
	// stored comes back ordered by umpire id.
	for i, id := range stored {
		if sortedProposed[i] != id {
			return false
		}
	}
	return true
}

// applyOne commits a single assignment in its own transaction. The re-checks
// run against the current persisted schedule, not the solve-time snapshot, to
// guard against races between solve and apply.
func (a *Applier) applyOne(ctx context.Context, assignment Assignment) error {
	duration := assignment.EndTime.Sub(assignment.StartTime)
	if duration <= 0 {
		return skipErr{reason: "assignment has a non-positive duration"}
	}

	return a.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		q := txdb.Queries

		game, err := q.GetGame(ctx, assignment.GameID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return skipErr{reason: SkipReasonGameMissing}
			}
			return fmt.Errorf("load game: %w", err)
		}

		if game.GameDate.Valid {
			if game.FieldID.Valid &&
				game.FieldID.Int64 == assignment.FieldID &&
				game.GameDate.Time.Equal(assignment.StartTime) &&
				game.GameEndDate.Valid &&
				game.GameEndDate.Time.Equal(assignment.EndTime) {
				// Same slot: an idempotent retry, as long as the persisted
				// crew matches too.
				stored, err := q.ListGameUmpires(ctx, assignment.GameID)
				if err != nil {
					return fmt.Errorf("load game umpires: %w", err)
				}
				if sameCrew(stored, assignment.UmpireIDs) {
					return nil
				}
			}
			return skipErr{reason: SkipReasonAlreadyScheduled}
		}

		if game.GameStatus != appdb.GameStatusUnscheduled && game.GameStatus != appdb.GameStatusReschedulable {
			return skipErr{reason: SkipReasonGameNotSchedulable}
		}

		// Field re-check: compare intervals against each persisted game's own
		// end time, so an existing game with a different duration still
		// surfaces.
		conflicts, err := q.ListFieldGamesOverlapping(ctx, appdb.ListFieldGamesOverlappingParams{
			FieldID:       assignment.FieldID,
			OverlapStart:  assignment.StartTime,
			OverlapEnd:    assignment.EndTime,
			ExcludeGameID: assignment.GameID,
		})
		if err != nil {
			return fmt.Errorf("check field conflicts: %w", err)
		}
		if len(conflicts) > 0 {
			return skipErr{reason: SkipReasonFieldUnavailable}
		}

		for _, umpireID := range assignment.UmpireIDs {
			busy, err := q.ListUmpireGamesOverlapping(ctx, appdb.ListUmpireGamesOverlappingParams{
				UmpireID:      umpireID,
				OverlapStart:  assignment.StartTime,
				OverlapEnd:    assignment.EndTime,
				ExcludeGameID: assignment.GameID,
			})
			if err != nil {
				return fmt.Errorf("check umpire conflicts: %w", err)
			}
			if len(busy) > 0 {
				return skipErr{reason: SkipReasonUmpireUnavailable}
			}
		}

		rows, err := q.ScheduleGame(ctx, appdb.ScheduleGameParams{
			ID:              assignment.GameID,
			FieldID:         assignment.FieldID,
			GameDate:        assignment.StartTime,
			GameEndDate:     assignment.EndTime,
			ExpectedVersion: game.Version,
		})
		if err != nil {
			return fmt.Errorf("schedule game: %w", err)
		}
		if rows == 0 {
			// Version moved between our read and write.
			return skipErr{reason: SkipReasonGameModified}
		}

		if err := q.DeleteGameUmpires(ctx, assignment.GameID); err != nil {
			return fmt.Errorf("clear game umpires: %w", err)
		}
		for _, umpireID := range assignment.UmpireIDs {
			if err := q.AddGameUmpire(ctx, appdb.AddGameUmpireParams{
				GameID:   assignment.GameID,
				UmpireID: umpireID,
			}); err != nil {
				return fmt.Errorf("assign umpire %d: %w", umpireID, err)
			}
		}
		return nil
	})
}
