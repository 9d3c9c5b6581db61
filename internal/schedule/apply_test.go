// internal/schedule/apply_test.go
package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	appdb "github.com/bstan/leaguesched/internal/db"
	"github.com/bstan/leaguesched/internal/testutil"
)

// fixture seeds one account with a June 2026 season, two fields, two umpires,
// one league, and four teams.
type fixture struct {
	db      *appdb.DB
	account appdb.Account
	season  appdb.Season
	fields  []appdb.Field
	umpires []appdb.Umpire
	league  appdb.LeagueSeason
	teams   []appdb.TeamSeason
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	q := database.Queries

	f := &fixture{db: database}
	var err error

	if f.account, err = q.CreateAccount(ctx, "Riverside Youth League"); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if f.season, err = q.CreateSeason(ctx, appdb.CreateSeasonParams{
		AccountID: f.account.ID,
		Name:      "Summer 2026",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-30",
	}); err != nil {
		t.Fatalf("create season: %v", err)
	}
	for _, name := range []string{"North Field", "South Field"} {
		field, err := q.CreateField(ctx, appdb.CreateFieldParams{AccountID: f.account.ID, Name: name})
		if err != nil {
			t.Fatalf("create field: %v", err)
		}
		f.fields = append(f.fields, field)
	}
	for _, name := range []string{"Sam", "Alex"} {
		umpire, err := q.CreateUmpire(ctx, appdb.CreateUmpireParams{AccountID: f.account.ID, Name: name})
		if err != nil {
			t.Fatalf("create umpire: %v", err)
		}
		f.umpires = append(f.umpires, umpire)
	}
	if f.league, err = q.CreateLeagueSeason(ctx, appdb.CreateLeagueSeasonParams{
		SeasonID: f.season.ID,
		Name:     "U12",
	}); err != nil {
		t.Fatalf("create league: %v", err)
	}
	for _, name := range []string{"Hawks", "Owls", "Falcons", "Robins"} {
		team, err := q.CreateTeamSeason(ctx, appdb.CreateTeamSeasonParams{
			LeagueSeasonID: f.league.ID,
			Name:           name,
		})
		if err != nil {
			t.Fatalf("create team: %v", err)
		}
		f.teams = append(f.teams, team)
	}
	return f
}

func (f *fixture) newGame(t *testing.T, home, visitor int) appdb.Game {
	t.Helper()
	game, err := f.db.Queries.CreateGame(context.Background(), appdb.CreateGameParams{
		LeagueSeasonID:      f.league.ID,
		HomeTeamSeasonID:    f.teams[home].ID,
		VisitorTeamSeasonID: f.teams[visitor].ID,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return game
}

func (f *fixture) getGame(t *testing.T, id int64) appdb.Game {
	t.Helper()
	game, err := f.db.Queries.GetGame(context.Background(), id)
	if err != nil {
		t.Fatalf("get game %d: %v", id, err)
	}
	return game
}

func assignmentFor(game appdb.Game, fieldID int64, start time.Time, umpireIDs ...int64) Assignment {
	return Assignment{
		GameID:    game.ID,
		FieldID:   fieldID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		UmpireIDs: umpireIDs,
	}
}

func TestApplyValidation(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)
	game := f.newGame(t, 0, 1)
	assignment := assignmentFor(game, f.fields[0].ID, at("2026-06-06", "09:00"))

	tests := []struct {
		name    string
		params  ApplyParams
		wantErr error
	}{
		{
			name:    "missing run id",
			params:  ApplyParams{Mode: ApplyModeAll, Assignments: []Assignment{assignment}},
			wantErr: ErrMissingRunID,
		},
		{
			name:    "bad mode",
			params:  ApplyParams{RunID: "r1", Mode: "some", Assignments: []Assignment{assignment}},
			wantErr: ErrInvalidApplyMode,
		},
		{
			name:    "subset without game ids",
			params:  ApplyParams{RunID: "r1", Mode: ApplyModeSubset, Assignments: []Assignment{assignment}},
			wantErr: ErrEmptySubset,
		},
		{
			name:    "no assignments",
			params:  ApplyParams{RunID: "r1", Mode: ApplyModeAll},
			wantErr: ErrNoAssignments,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := applier.Apply(context.Background(), tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if result != nil {
				t.Fatalf("expected nil result, got %+v", result)
			}
		})
	}
}

func TestApplyAllThenIdempotentRetry(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)
	ctx := context.Background()

	game1 := f.newGame(t, 0, 1)
	game2 := f.newGame(t, 2, 3)
	params := ApplyParams{
		RunID: "run-1",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			assignmentFor(game1, f.fields[0].ID, at("2026-06-06", "09:00"), f.umpires[0].ID),
			assignmentFor(game2, f.fields[0].ID, at("2026-06-06", "11:00"), f.umpires[0].ID),
		},
	}

	result, err := applier.Apply(ctx, params)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Status != ApplyStatusApplied {
		t.Fatalf("status = %q (skipped: %+v)", result.Status, result.Skipped)
	}
	if len(result.AppliedGameIDs) != 2 {
		t.Fatalf("applied = %v, want both games", result.AppliedGameIDs)
	}

	stored := f.getGame(t, game1.ID)
	if !stored.FieldID.Valid || stored.FieldID.Int64 != f.fields[0].ID {
		t.Errorf("game 1 field = %+v, want %d", stored.FieldID, f.fields[0].ID)
	}
	if !stored.GameDate.Valid || !stored.GameDate.Time.Equal(at("2026-06-06", "09:00")) {
		t.Errorf("game 1 date = %+v, want 09:00 on 2026-06-06", stored.GameDate)
	}
	if stored.GameStatus != appdb.GameStatusScheduled {
		t.Errorf("game 1 status = %q, want scheduled", stored.GameStatus)
	}
	if stored.Version != game1.Version+1 {
		t.Errorf("game 1 version = %d, want %d", stored.Version, game1.Version+1)
	}
	umpires, err := f.db.Queries.ListGameUmpires(ctx, game1.ID)
	if err != nil {
		t.Fatalf("list game umpires: %v", err)
	}
	if len(umpires) != 1 || umpires[0] != f.umpires[0].ID {
		t.Errorf("game 1 umpires = %v, want [%d]", umpires, f.umpires[0].ID)
	}

	// Retrying the identical run must count both games as applied again and
	// write nothing.
	retry, err := applier.Apply(ctx, params)
	if err != nil {
		t.Fatalf("retry Apply: %v", err)
	}
	if retry.Status != ApplyStatusApplied || len(retry.AppliedGameIDs) != 2 {
		t.Fatalf("retry result = %+v, want both applied", retry)
	}
	if got := f.getGame(t, game1.ID); got.Version != stored.Version {
		t.Errorf("retry bumped version: %d -> %d", stored.Version, got.Version)
	}
}

func TestApplySubsetIgnoresUnlistedGames(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)

	game1 := f.newGame(t, 0, 1)
	game2 := f.newGame(t, 2, 3)

	result, err := applier.Apply(context.Background(), ApplyParams{
		RunID:   "run-1",
		Mode:    ApplyModeSubset,
		GameIDs: []int64{game1.ID},
		Assignments: []Assignment{
			assignmentFor(game1, f.fields[0].ID, at("2026-06-06", "09:00")),
			assignmentFor(game2, f.fields[0].ID, at("2026-06-06", "11:00")),
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if result.Status != ApplyStatusApplied {
		t.Fatalf("status = %q (skipped: %+v)", result.Status, result.Skipped)
	}
	if len(result.AppliedGameIDs) != 1 || result.AppliedGameIDs[0] != game1.ID {
		t.Errorf("applied = %v, want only game 1", result.AppliedGameIDs)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("unlisted game reported as skipped: %+v", result.Skipped)
	}
	if got := f.getGame(t, game2.ID); got.GameDate.Valid {
		t.Errorf("unlisted game was scheduled: %+v", got)
	}
}

func TestApplySkipsConflicts(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)
	ctx := context.Background()

	occupant := f.newGame(t, 0, 1)
	first, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-1",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			assignmentFor(occupant, f.fields[0].ID, at("2026-06-06", "09:00"), f.umpires[0].ID),
		},
	})
	if err != nil {
		t.Fatalf("seed apply: %v", err)
	}
	if first.Status != ApplyStatusApplied {
		t.Fatalf("seed apply status = %q", first.Status)
	}

	fieldClash := f.newGame(t, 2, 3)
	umpireClash := f.newGame(t, 1, 2)
	missingID := umpireClash.ID + 1000

	result, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-2",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			// Overlaps the occupant on the same field.
			assignmentFor(fieldClash, f.fields[0].ID, at("2026-06-06", "10:00")),
			// Different field, same umpire, overlapping interval.
			assignmentFor(umpireClash, f.fields[1].ID, at("2026-06-06", "10:00"), f.umpires[0].ID),
			{
				GameID:    missingID,
				FieldID:   f.fields[1].ID,
				StartTime: at("2026-06-13", "09:00"),
				EndTime:   at("2026-06-13", "11:00"),
			},
			// Re-sends the occupant's own assignment: idempotent, not a clash.
			assignmentFor(occupant, f.fields[0].ID, at("2026-06-06", "09:00"), f.umpires[0].ID),
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if result.Status != ApplyStatusPartial {
		t.Fatalf("status = %q, want partial", result.Status)
	}
	if len(result.AppliedGameIDs) != 1 || result.AppliedGameIDs[0] != occupant.ID {
		t.Errorf("applied = %v, want only the occupant's retry", result.AppliedGameIDs)
	}

	reasons := make(map[int64]string, len(result.Skipped))
	for _, s := range result.Skipped {
		reasons[s.GameID] = s.Reason
	}
	if got := reasons[fieldClash.ID]; got != SkipReasonFieldUnavailable {
		t.Errorf("field clash reason = %q, want %q", got, SkipReasonFieldUnavailable)
	}
	if got := reasons[umpireClash.ID]; got != SkipReasonUmpireUnavailable {
		t.Errorf("umpire clash reason = %q, want %q", got, SkipReasonUmpireUnavailable)
	}
	if got := reasons[missingID]; got != SkipReasonGameMissing {
		t.Errorf("missing game reason = %q, want %q", got, SkipReasonGameMissing)
	}
}

func TestApplySkipsConflictWithLongerGame(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)
	ctx := context.Background()

	// A three-hour game holding the field 09:00 to 12:00.
	long := f.newGame(t, 0, 1)
	first, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-1",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			{
				GameID:    long.ID,
				FieldID:   f.fields[0].ID,
				StartTime: at("2026-06-06", "09:00"),
				EndTime:   at("2026-06-06", "12:00"),
				UmpireIDs: []int64{f.umpires[0].ID},
			},
		},
	})
	if err != nil {
		t.Fatalf("seed apply: %v", err)
	}
	if first.Status != ApplyStatusApplied {
		t.Fatalf("seed apply status = %q (skipped: %+v)", first.Status, first.Skipped)
	}

	// A one-hour game inside the tail of the longer one must clash even
	// though its start lies well past the occupant's start.
	fieldClash := f.newGame(t, 2, 3)
	umpireClash := f.newGame(t, 1, 2)
	result, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-2",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			{
				GameID:    fieldClash.ID,
				FieldID:   f.fields[0].ID,
				StartTime: at("2026-06-06", "11:00"),
				EndTime:   at("2026-06-06", "12:00"),
			},
			{
				GameID:    umpireClash.ID,
				FieldID:   f.fields[1].ID,
				StartTime: at("2026-06-06", "11:00"),
				EndTime:   at("2026-06-06", "12:00"),
				UmpireIDs: []int64{f.umpires[0].ID},
			},
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if result.Status != ApplyStatusPartial {
		t.Fatalf("status = %q, want partial (applied: %v)", result.Status, result.AppliedGameIDs)
	}
	if len(result.AppliedGameIDs) != 0 {
		t.Errorf("applied = %v, want none", result.AppliedGameIDs)
	}
	reasons := make(map[int64]string, len(result.Skipped))
	for _, s := range result.Skipped {
		reasons[s.GameID] = s.Reason
	}
	if got := reasons[fieldClash.ID]; got != SkipReasonFieldUnavailable {
		t.Errorf("field clash reason = %q, want %q", got, SkipReasonFieldUnavailable)
	}
	if got := reasons[umpireClash.ID]; got != SkipReasonUmpireUnavailable {
		t.Errorf("umpire clash reason = %q, want %q", got, SkipReasonUmpireUnavailable)
	}
	if got := f.getGame(t, fieldClash.ID); got.GameDate.Valid {
		t.Errorf("clashing game was scheduled: %+v", got)
	}
}

func TestApplyRetrySkipsChangedCrew(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)
	ctx := context.Background()

	game := f.newGame(t, 0, 1)
	if _, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-1",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			assignmentFor(game, f.fields[0].ID, at("2026-06-06", "09:00"), f.umpires[0].ID),
		},
	}); err != nil {
		t.Fatalf("seed apply: %v", err)
	}

	// Same field and slot, different crew: not an idempotent retry.
	result, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-2",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			assignmentFor(game, f.fields[0].ID, at("2026-06-06", "09:00"), f.umpires[1].ID),
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if result.Status != ApplyStatusPartial {
		t.Fatalf("status = %q, want partial", result.Status)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != SkipReasonAlreadyScheduled {
		t.Fatalf("skipped = %+v, want %q", result.Skipped, SkipReasonAlreadyScheduled)
	}
	umpires, err := f.db.Queries.ListGameUmpires(ctx, game.ID)
	if err != nil {
		t.Fatalf("list game umpires: %v", err)
	}
	if len(umpires) != 1 || umpires[0] != f.umpires[0].ID {
		t.Errorf("crew changed by stale apply: %v", umpires)
	}
}

func TestApplySkipsGameScheduledDifferently(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)
	ctx := context.Background()

	game := f.newGame(t, 0, 1)
	if _, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-1",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			assignmentFor(game, f.fields[0].ID, at("2026-06-06", "09:00")),
		},
	}); err != nil {
		t.Fatalf("seed apply: %v", err)
	}

	// A stale run proposing a different slot for the now-scheduled game.
	result, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-2",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			assignmentFor(game, f.fields[1].ID, at("2026-06-13", "09:00")),
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if result.Status != ApplyStatusPartial {
		t.Fatalf("status = %q, want partial", result.Status)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != SkipReasonAlreadyScheduled {
		t.Fatalf("skipped = %+v, want %q", result.Skipped, SkipReasonAlreadyScheduled)
	}
	if got := f.getGame(t, game.ID); !got.GameDate.Time.Equal(at("2026-06-06", "09:00")) {
		t.Errorf("game moved by stale apply: %+v", got.GameDate)
	}
}

func TestApplySkipsCanceledGame(t *testing.T) {
	f := newFixture(t)
	applier := NewApplier(f.db)
	ctx := context.Background()

	game := f.newGame(t, 0, 1)
	if _, err := f.db.ExecContext(ctx,
		"UPDATE games SET game_status = ? WHERE id = ?",
		appdb.GameStatusCanceled, game.ID,
	); err != nil {
		t.Fatalf("cancel game: %v", err)
	}

	result, err := applier.Apply(ctx, ApplyParams{
		RunID: "run-1",
		Mode:  ApplyModeAll,
		Assignments: []Assignment{
			assignmentFor(game, f.fields[0].ID, at("2026-06-06", "09:00")),
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(result.Skipped) != 1 || result.Skipped[0].Reason != SkipReasonGameNotSchedulable {
		t.Fatalf("skipped = %+v, want %q", result.Skipped, SkipReasonGameNotSchedulable)
	}
}
