package availability

import (
	"database/sql"
	"testing"
	"time"

	"github.com/bstan/leaguesched/internal/db"
)

func rule(fieldID int64, mask int64, start, end string, increment int64) db.FieldAvailabilityRule {
	return db.FieldAvailabilityRule{
		FieldID:               fieldID,
		DaysOfWeekMask:        mask,
		StartTimeLocal:        start,
		EndTimeLocal:          end,
		StartIncrementMinutes: increment,
		Enabled:               true,
	}
}

func TestWeekdayBit(t *testing.T) {
	cases := []struct {
		day  time.Weekday
		want int64
	}{
		{time.Monday, 1 << 0},
		{time.Tuesday, 1 << 1},
		{time.Saturday, 1 << 5},
		{time.Sunday, 1 << 6},
	}
	for _, tc := range cases {
		if got := WeekdayBit(tc.day); got != tc.want {
			t.Errorf("WeekdayBit(%v) = %d, want %d", tc.day, got, tc.want)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	minutes, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if minutes != 9*60+30 {
		t.Fatalf("ParseTimeOfDay(09:30) = %d, want %d", minutes, 9*60+30)
	}

	if _, err := ParseTimeOfDay("9:30am"); err == nil {
		t.Fatal("expected error for non HH:MM input")
	}
}

func TestValidateRule(t *testing.T) {
	valid := rule(1, 1<<5, "09:00", "13:00", 60)

	cases := []struct {
		name    string
		mutate  func(r *db.FieldAvailabilityRule)
		wantErr bool
	}{
		{"valid", func(r *db.FieldAvailabilityRule) {}, false},
		{"start after end", func(r *db.FieldAvailabilityRule) { r.StartTimeLocal = "14:00" }, true},
		{"equal times", func(r *db.FieldAvailabilityRule) { r.EndTimeLocal = "09:00" }, true},
		{"empty mask while enabled", func(r *db.FieldAvailabilityRule) { r.DaysOfWeekMask = 0 }, true},
		{"empty mask while disabled", func(r *db.FieldAvailabilityRule) { r.DaysOfWeekMask = 0; r.Enabled = false }, false},
		{"increment too small", func(r *db.FieldAvailabilityRule) { r.StartIncrementMinutes = 0 }, true},
		{"increment too large", func(r *db.FieldAvailabilityRule) { r.StartIncrementMinutes = 1441 }, true},
		{"malformed time", func(r *db.FieldAvailabilityRule) { r.StartTimeLocal = "morning" }, true},
		{"date range reversed", func(r *db.FieldAvailabilityRule) {
			r.StartDate = sql.NullString{String: "2026-06-10", Valid: true}
			r.EndDate = sql.NullString{String: "2026-06-01", Valid: true}
		}, true},
		{"date range ordered", func(r *db.FieldAvailabilityRule) {
			r.StartDate = sql.NullString{String: "2026-06-01", Valid: true}
			r.EndDate = sql.NullString{String: "2026-06-10", Valid: true}
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			err := ValidateRule(r)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRuleCoversDate(t *testing.T) {
	saturday := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)

	r := rule(1, WeekdayBit(time.Saturday), "09:00", "13:00", 60)
	if !RuleCoversDate(r, saturday) {
		t.Fatal("expected Saturday rule to cover a Saturday")
	}

	sunday := saturday.AddDate(0, 0, 1)
	if RuleCoversDate(r, sunday) {
		t.Fatal("Saturday rule must not cover a Sunday")
	}

	r.StartDate = sql.NullString{String: "2026-06-07", Valid: true}
	if RuleCoversDate(r, saturday) {
		t.Fatal("rule must not cover dates before its start date")
	}

	r.StartDate = sql.NullString{}
	r.EndDate = sql.NullString{String: "2026-06-05", Valid: true}
	if RuleCoversDate(r, saturday) {
		t.Fatal("rule must not cover dates after its end date")
	}

	r.EndDate = sql.NullString{}
	r.Enabled = false
	if RuleCoversDate(r, saturday) {
		t.Fatal("disabled rule must not cover any date")
	}
}

func TestCandidateStartsSingleWindow(t *testing.T) {
	saturday := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	rules := []db.FieldAvailabilityRule{rule(1, WeekdayBit(time.Saturday), "09:00", "13:00", 60)}

	starts := CandidateStarts(rules, nil, 1, saturday, 2*time.Hour)

	want := []string{"09:00", "10:00", "11:00"}
	if len(starts) != len(want) {
		t.Fatalf("got %d candidate starts, want %d: %v", len(starts), len(want), starts)
	}
	for i, s := range starts {
		if got := s.Format("15:04"); got != want[i] {
			t.Errorf("start %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestCandidateStartsDurationMustFit(t *testing.T) {
	saturday := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	rules := []db.FieldAvailabilityRule{rule(1, WeekdayBit(time.Saturday), "09:00", "10:00", 30)}

	if starts := CandidateStarts(rules, nil, 1, saturday, 2*time.Hour); len(starts) != 0 {
		t.Fatalf("expected no candidates for a game longer than the window, got %v", starts)
	}
}

func TestCandidateStartsMergesOverlappingRules(t *testing.T) {
	saturday := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	rules := []db.FieldAvailabilityRule{
		rule(1, WeekdayBit(time.Saturday), "09:00", "12:00", 60),
		rule(1, WeekdayBit(time.Saturday), "11:00", "15:00", 60),
	}

	starts := CandidateStarts(rules, nil, 1, saturday, 2*time.Hour)

	// Merged span is 09:00-15:00, so 11:00 (from the first rule's window) fits
	// even though it runs past that rule's own end.
	want := []string{"09:00", "10:00", "11:00", "12:00", "13:00"}
	if len(starts) != len(want) {
		t.Fatalf("got %d starts %v, want %d", len(starts), starts, len(want))
	}
	for i, s := range starts {
		if got := s.Format("15:04"); got != want[i] {
			t.Errorf("start %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestCandidateStartsExclusionDateRemovesDay(t *testing.T) {
	saturday := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	rules := []db.FieldAvailabilityRule{rule(1, WeekdayBit(time.Saturday), "09:00", "13:00", 60)}
	exclusions := []db.FieldExclusionDate{{FieldID: 1, Date: "2026-06-06", Enabled: true}}

	if starts := CandidateStarts(rules, exclusions, 1, saturday, time.Hour); len(starts) != 0 {
		t.Fatalf("expected excluded day to yield no candidates, got %v", starts)
	}

	exclusions[0].Enabled = false
	if starts := CandidateStarts(rules, exclusions, 1, saturday, time.Hour); len(starts) == 0 {
		t.Fatal("disabled exclusion must not remove the day")
	}
}

func TestCandidateStartsIgnoresOtherFields(t *testing.T) {
	saturday := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	rules := []db.FieldAvailabilityRule{rule(2, WeekdayBit(time.Saturday), "09:00", "13:00", 60)}

	if starts := CandidateStarts(rules, nil, 1, saturday, time.Hour); len(starts) != 0 {
		t.Fatalf("expected no candidates from another field's rule, got %v", starts)
	}
}
