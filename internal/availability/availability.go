// internal/availability/availability.go

// Package availability derives candidate game start times from per-field
// recurring availability rules and single-day field exclusions.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bstan/leaguesched/internal/db"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidTime      = errors.New("time must be in HH:MM format")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrWindowOrder      = errors.New("start time must be before end time")
	ErrDateOrder        = errors.New("start date must be on or before end date")
	ErrEmptyDayMask     = errors.New("at least one day of week is required")
	ErrInvalidIncrement = errors.New("start increment must be between 1 and 1440 minutes")
)

// ParseTimeOfDay parses an HH:MM string into minutes since midnight.
func ParseTimeOfDay(raw string) (int, error) {
	parsed, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// ParseDate parses a YYYY-MM-DD string in the given location.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}

// WeekdayBit maps a weekday onto the rule mask layout: bit0=Monday .. bit6=Sunday.
func WeekdayBit(day time.Weekday) int64 {
	return 1 << ((int64(day) + 6) % 7)
}

// ValidateRule checks the invariants a field availability rule must satisfy
// before it is stored. Violations are rejected here, not at solve time.
func ValidateRule(rule db.FieldAvailabilityRule) error {
	start, err := ParseTimeOfDay(rule.StartTimeLocal)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := ParseTimeOfDay(rule.EndTimeLocal)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if start >= end {
		return ErrWindowOrder
	}
	if rule.Enabled && rule.DaysOfWeekMask == 0 {
		return ErrEmptyDayMask
	}
	if rule.DaysOfWeekMask < 0 || rule.DaysOfWeekMask > 0x7F {
		return ErrEmptyDayMask
	}
	if rule.StartIncrementMinutes < 1 || rule.StartIncrementMinutes > 1440 {
		return ErrInvalidIncrement
	}
	if rule.StartDate.Valid {
		if _, err := ParseDate(rule.StartDate.String, time.UTC); err != nil {
			return fmt.Errorf("start date: %w", err)
		}
	}
	if rule.EndDate.Valid {
		if _, err := ParseDate(rule.EndDate.String, time.UTC); err != nil {
			return fmt.Errorf("end date: %w", err)
		}
	}
	if rule.StartDate.Valid && rule.EndDate.Valid && rule.StartDate.String > rule.EndDate.String {
		return ErrDateOrder
	}
	return nil
}

// RuleCoversDate reports whether an enabled rule applies on the given date:
// the date range (when bounded) contains it and the weekday mask bit is set.
func RuleCoversDate(rule db.FieldAvailabilityRule, date time.Time) bool {
	if !rule.Enabled {
		return false
	}
	day := date.Format(DateLayout)
	if rule.StartDate.Valid && day < rule.StartDate.String {
		return false
	}
	if rule.EndDate.Valid && day > rule.EndDate.String {
		return false
	}
	return rule.DaysOfWeekMask&WeekdayBit(date.Weekday()) != 0
}

// FieldExcluded reports whether the field has an enabled exclusion on the date.
func FieldExcluded(exclusions []db.FieldExclusionDate, fieldID int64, date time.Time) bool {
	day := date.Format(DateLayout)
	for _, excl := range exclusions {
		if excl.Enabled && excl.FieldID == fieldID && excl.Date == day {
			return true
		}
	}
	return false
}

// HasAnyRule reports whether the field has at least one enabled rule,
// regardless of date. Used to pick accurate infeasibility reasons.
func HasAnyRule(rules []db.FieldAvailabilityRule, fieldID int64) bool {
	for _, rule := range rules {
		if rule.Enabled && rule.FieldID == fieldID {
			return true
		}
	}
	return false
}

type window struct {
	start, end, increment int
}

// mergeWindows collapses overlapping or touching windows into disjoint spans.
func mergeWindows(windows []window) []window {
	if len(windows) == 0 {
		return nil
	}
	sorted := make([]window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	merged := []window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if w.start <= last.end {
			if w.end > last.end {
				last.end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// CandidateStarts returns the sorted, de-duplicated start times at which a
// game of the given duration fits on the field on the given date. Overlapping
// rules union their time ranges: a start generated by one rule may run into an
// adjoining rule's window, as long as it fits inside the merged span. An
// enabled exclusion date removes the whole day.
func CandidateStarts(rules []db.FieldAvailabilityRule, exclusions []db.FieldExclusionDate, fieldID int64, date time.Time, duration time.Duration) []time.Time {
	if duration <= 0 {
		return nil
	}
	if FieldExcluded(exclusions, fieldID, date) {
		return nil
	}

	var windows []window
	for _, rule := range rules {
		if rule.FieldID != fieldID || !RuleCoversDate(rule, date) {
			continue
		}
		windowStart, err := ParseTimeOfDay(rule.StartTimeLocal)
		if err != nil {
			continue
		}
		windowEnd, err := ParseTimeOfDay(rule.EndTimeLocal)
		if err != nil {
			continue
		}
		windows = append(windows, window{windowStart, windowEnd, int(rule.StartIncrementMinutes)})
	}

	merged := mergeWindows(windows)
	fitsMerged := func(start, end int) bool {
		for _, span := range merged {
			if start >= span.start && end <= span.end {
				return true
			}
		}
		return false
	}

	durationMinutes := int(duration / time.Minute)
	seen := make(map[int]struct{})
	var startMinutes []int
	for _, w := range windows {
		for start := w.start; start < w.end; start += w.increment {
			if !fitsMerged(start, start+durationMinutes) {
				continue
			}
			if _, ok := seen[start]; ok {
				continue
			}
			seen[start] = struct{}{}
			startMinutes = append(startMinutes, start)
		}
	}

	sort.Ints(startMinutes)

	starts := make([]time.Time, 0, len(startMinutes))
	for _, minutes := range startMinutes {
		starts = append(starts, time.Date(
			date.Year(), date.Month(), date.Day(),
			minutes/60, minutes%60, 0, 0, date.Location(),
		))
	}
	return starts
}
