// internal/db/availability.go
package db

import (
	"context"
	"database/sql"
)

type CreateFieldAvailabilityRuleParams struct {
	SeasonID              int64
	FieldID               int64
	StartDate             sql.NullString
	EndDate               sql.NullString
	DaysOfWeekMask        int64
	StartTimeLocal        string
	EndTimeLocal          string
	StartIncrementMinutes int64
	Enabled               bool
}

const createFieldAvailabilityRule = `
INSERT INTO field_availability_rules
    (season_id, field_id, start_date, end_date, days_of_week_mask,
     start_time_local, end_time_local, start_increment_minutes, enabled)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, season_id, field_id, start_date, end_date, days_of_week_mask,
          start_time_local, end_time_local, start_increment_minutes, enabled
`

func (q *Queries) CreateFieldAvailabilityRule(ctx context.Context, arg CreateFieldAvailabilityRuleParams) (FieldAvailabilityRule, error) {
	var r FieldAvailabilityRule
	err := q.db.QueryRowContext(ctx, createFieldAvailabilityRule,
		arg.SeasonID, arg.FieldID, arg.StartDate, arg.EndDate, arg.DaysOfWeekMask,
		arg.StartTimeLocal, arg.EndTimeLocal, arg.StartIncrementMinutes, arg.Enabled,
	).Scan(
		&r.ID, &r.SeasonID, &r.FieldID, &r.StartDate, &r.EndDate, &r.DaysOfWeekMask,
		&r.StartTimeLocal, &r.EndTimeLocal, &r.StartIncrementMinutes, &r.Enabled,
	)
	return r, err
}

const listFieldAvailabilityRules = `
SELECT id, season_id, field_id, start_date, end_date, days_of_week_mask,
       start_time_local, end_time_local, start_increment_minutes, enabled
FROM field_availability_rules
WHERE season_id = ?
ORDER BY id
`

func (q *Queries) ListFieldAvailabilityRules(ctx context.Context, seasonID int64) ([]FieldAvailabilityRule, error) {
	rows, err := q.db.QueryContext(ctx, listFieldAvailabilityRules, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFieldAvailabilityRules(rows)
}

const listEnabledFieldAvailabilityRules = `
SELECT id, season_id, field_id, start_date, end_date, days_of_week_mask,
       start_time_local, end_time_local, start_increment_minutes, enabled
FROM field_availability_rules
WHERE season_id = ? AND enabled = 1
ORDER BY id
`

func (q *Queries) ListEnabledFieldAvailabilityRules(ctx context.Context, seasonID int64) ([]FieldAvailabilityRule, error) {
	rows, err := q.db.QueryContext(ctx, listEnabledFieldAvailabilityRules, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFieldAvailabilityRules(rows)
}

type UpdateFieldAvailabilityRuleParams struct {
	ID                    int64
	SeasonID              int64
	FieldID               int64
	StartDate             sql.NullString
	EndDate               sql.NullString
	DaysOfWeekMask        int64
	StartTimeLocal        string
	EndTimeLocal          string
	StartIncrementMinutes int64
	Enabled               bool
}

const updateFieldAvailabilityRule = `
UPDATE field_availability_rules
SET field_id = ?, start_date = ?, end_date = ?, days_of_week_mask = ?,
    start_time_local = ?, end_time_local = ?, start_increment_minutes = ?, enabled = ?
WHERE id = ? AND season_id = ?
`

func (q *Queries) UpdateFieldAvailabilityRule(ctx context.Context, arg UpdateFieldAvailabilityRuleParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateFieldAvailabilityRule,
		arg.FieldID, arg.StartDate, arg.EndDate, arg.DaysOfWeekMask,
		arg.StartTimeLocal, arg.EndTimeLocal, arg.StartIncrementMinutes, arg.Enabled,
		arg.ID, arg.SeasonID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type DeleteFieldAvailabilityRuleParams struct {
	ID       int64
	SeasonID int64
}

const deleteFieldAvailabilityRule = `
DELETE FROM field_availability_rules WHERE id = ? AND season_id = ?
`

func (q *Queries) DeleteFieldAvailabilityRule(ctx context.Context, arg DeleteFieldAvailabilityRuleParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFieldAvailabilityRule, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanFieldAvailabilityRules(rows *sql.Rows) ([]FieldAvailabilityRule, error) {
	var rules []FieldAvailabilityRule
	for rows.Next() {
		var r FieldAvailabilityRule
		if err := rows.Scan(
			&r.ID, &r.SeasonID, &r.FieldID, &r.StartDate, &r.EndDate, &r.DaysOfWeekMask,
			&r.StartTimeLocal, &r.EndTimeLocal, &r.StartIncrementMinutes, &r.Enabled,
		); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

type CreateFieldExclusionDateParams struct {
	SeasonID int64
	FieldID  int64
	Date     string
	Note     sql.NullString
	Enabled  bool
}

const createFieldExclusionDate = `
INSERT INTO field_exclusion_dates (season_id, field_id, date, note, enabled)
VALUES (?, ?, ?, ?, ?)
RETURNING id, season_id, field_id, date, note, enabled
`

func (q *Queries) CreateFieldExclusionDate(ctx context.Context, arg CreateFieldExclusionDateParams) (FieldExclusionDate, error) {
	var e FieldExclusionDate
	err := q.db.QueryRowContext(ctx, createFieldExclusionDate,
		arg.SeasonID, arg.FieldID, arg.Date, arg.Note, arg.Enabled,
	).Scan(&e.ID, &e.SeasonID, &e.FieldID, &e.Date, &e.Note, &e.Enabled)
	return e, err
}

const listFieldExclusionDates = `
SELECT id, season_id, field_id, date, note, enabled
FROM field_exclusion_dates
WHERE season_id = ?
ORDER BY id
`

func (q *Queries) ListFieldExclusionDates(ctx context.Context, seasonID int64) ([]FieldExclusionDate, error) {
	rows, err := q.db.QueryContext(ctx, listFieldExclusionDates, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFieldExclusionDates(rows)
}

const listEnabledFieldExclusionDates = `
SELECT id, season_id, field_id, date, note, enabled
FROM field_exclusion_dates
WHERE season_id = ? AND enabled = 1
ORDER BY id
`

func (q *Queries) ListEnabledFieldExclusionDates(ctx context.Context, seasonID int64) ([]FieldExclusionDate, error) {
	rows, err := q.db.QueryContext(ctx, listEnabledFieldExclusionDates, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFieldExclusionDates(rows)
}

type UpdateFieldExclusionDateParams struct {
	ID       int64
	SeasonID int64
	Date     string
	Note     sql.NullString
	Enabled  bool
}

const updateFieldExclusionDate = `
UPDATE field_exclusion_dates
SET date = ?, note = ?, enabled = ?
WHERE id = ? AND season_id = ?
`

func (q *Queries) UpdateFieldExclusionDate(ctx context.Context, arg UpdateFieldExclusionDateParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateFieldExclusionDate,
		arg.Date, arg.Note, arg.Enabled, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type DeleteFieldExclusionDateParams struct {
	ID       int64
	SeasonID int64
}

const deleteFieldExclusionDate = `
DELETE FROM field_exclusion_dates WHERE id = ? AND season_id = ?
`

func (q *Queries) DeleteFieldExclusionDate(ctx context.Context, arg DeleteFieldExclusionDateParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFieldExclusionDate, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanFieldExclusionDates(rows *sql.Rows) ([]FieldExclusionDate, error) {
	var dates []FieldExclusionDate
	for rows.Next() {
		var e FieldExclusionDate
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.FieldID, &e.Date, &e.Note, &e.Enabled); err != nil {
			return nil, err
		}
		dates = append(dates, e)
	}
	return dates, rows.Err()
}
