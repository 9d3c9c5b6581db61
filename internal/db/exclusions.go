// internal/db/exclusions.go
package db

import (
	"context"
	"database/sql"
)

type CreateSeasonExclusionParams struct {
	SeasonID  int64
	StartDate string
	EndDate   string
	Reason    sql.NullString
	Enabled   bool
}

const createSeasonExclusion = `
INSERT INTO season_exclusions (season_id, start_date, end_date, reason, enabled)
VALUES (?, ?, ?, ?, ?)
RETURNING id, season_id, start_date, end_date, reason, enabled
`

func (q *Queries) CreateSeasonExclusion(ctx context.Context, arg CreateSeasonExclusionParams) (SeasonExclusion, error) {
	var e SeasonExclusion
	err := q.db.QueryRowContext(ctx, createSeasonExclusion,
		arg.SeasonID, arg.StartDate, arg.EndDate, arg.Reason, arg.Enabled,
	).Scan(&e.ID, &e.SeasonID, &e.StartDate, &e.EndDate, &e.Reason, &e.Enabled)
	return e, err
}

const listSeasonExclusions = `
SELECT id, season_id, start_date, end_date, reason, enabled
FROM season_exclusions
WHERE season_id = ?
ORDER BY id
`

func (q *Queries) ListSeasonExclusions(ctx context.Context, seasonID int64) ([]SeasonExclusion, error) {
	rows, err := q.db.QueryContext(ctx, listSeasonExclusions, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exclusions []SeasonExclusion
	for rows.Next() {
		var e SeasonExclusion
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.StartDate, &e.EndDate, &e.Reason, &e.Enabled); err != nil {
			return nil, err
		}
		exclusions = append(exclusions, e)
	}
	return exclusions, rows.Err()
}

type UpdateSeasonExclusionParams struct {
	ID        int64
	SeasonID  int64
	StartDate string
	EndDate   string
	Reason    sql.NullString
	Enabled   bool
}

const updateSeasonExclusion = `
UPDATE season_exclusions
SET start_date = ?, end_date = ?, reason = ?, enabled = ?
WHERE id = ? AND season_id = ?
`

func (q *Queries) UpdateSeasonExclusion(ctx context.Context, arg UpdateSeasonExclusionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateSeasonExclusion,
		arg.StartDate, arg.EndDate, arg.Reason, arg.Enabled, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type DeleteExclusionParams struct {
	ID       int64
	SeasonID int64
}

const deleteSeasonExclusion = `
DELETE FROM season_exclusions WHERE id = ? AND season_id = ?
`

func (q *Queries) DeleteSeasonExclusion(ctx context.Context, arg DeleteExclusionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSeasonExclusion, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type CreateTeamExclusionParams struct {
	SeasonID     int64
	TeamSeasonID int64
	StartDate    string
	EndDate      string
	Reason       sql.NullString
	Enabled      bool
}

const createTeamExclusion = `
INSERT INTO team_exclusions (season_id, team_season_id, start_date, end_date, reason, enabled)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, season_id, team_season_id, start_date, end_date, reason, enabled
`

func (q *Queries) CreateTeamExclusion(ctx context.Context, arg CreateTeamExclusionParams) (TeamExclusion, error) {
	var e TeamExclusion
	err := q.db.QueryRowContext(ctx, createTeamExclusion,
		arg.SeasonID, arg.TeamSeasonID, arg.StartDate, arg.EndDate, arg.Reason, arg.Enabled,
	).Scan(&e.ID, &e.SeasonID, &e.TeamSeasonID, &e.StartDate, &e.EndDate, &e.Reason, &e.Enabled)
	return e, err
}

const listTeamExclusions = `
SELECT id, season_id, team_season_id, start_date, end_date, reason, enabled
FROM team_exclusions
WHERE season_id = ?
ORDER BY id
`

func (q *Queries) ListTeamExclusions(ctx context.Context, seasonID int64) ([]TeamExclusion, error) {
	rows, err := q.db.QueryContext(ctx, listTeamExclusions, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exclusions []TeamExclusion
	for rows.Next() {
		var e TeamExclusion
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.TeamSeasonID, &e.StartDate, &e.EndDate, &e.Reason, &e.Enabled); err != nil {
			return nil, err
		}
		exclusions = append(exclusions, e)
	}
	return exclusions, rows.Err()
}

type UpdateTeamExclusionParams struct {
	ID           int64
	SeasonID     int64
	TeamSeasonID int64
	StartDate    string
	EndDate      string
	Reason       sql.NullString
	Enabled      bool
}

const updateTeamExclusion = `
UPDATE team_exclusions
SET team_season_id = ?, start_date = ?, end_date = ?, reason = ?, enabled = ?
WHERE id = ? AND season_id = ?
`

func (q *Queries) UpdateTeamExclusion(ctx context.Context, arg UpdateTeamExclusionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTeamExclusion,
		arg.TeamSeasonID, arg.StartDate, arg.EndDate, arg.Reason, arg.Enabled, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTeamExclusion = `
DELETE FROM team_exclusions WHERE id = ? AND season_id = ?
`

func (q *Queries) DeleteTeamExclusion(ctx context.Context, arg DeleteExclusionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTeamExclusion, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type CreateUmpireExclusionParams struct {
	SeasonID  int64
	UmpireID  int64
	StartDate string
	EndDate   string
	Reason    sql.NullString
	Enabled   bool
}

const createUmpireExclusion = `
INSERT INTO umpire_exclusions (season_id, umpire_id, start_date, end_date, reason, enabled)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, season_id, umpire_id, start_date, end_date, reason, enabled
`

func (q *Queries) CreateUmpireExclusion(ctx context.Context, arg CreateUmpireExclusionParams) (UmpireExclusion, error) {
	var e UmpireExclusion
	err := q.db.QueryRowContext(ctx, createUmpireExclusion,
		arg.SeasonID, arg.UmpireID, arg.StartDate, arg.EndDate, arg.Reason, arg.Enabled,
	).Scan(&e.ID, &e.SeasonID, &e.UmpireID, &e.StartDate, &e.EndDate, &e.Reason, &e.Enabled)
	return e, err
}

const listUmpireExclusions = `
SELECT id, season_id, umpire_id, start_date, end_date, reason, enabled
FROM umpire_exclusions
WHERE season_id = ?
ORDER BY id
`

func (q *Queries) ListUmpireExclusions(ctx context.Context, seasonID int64) ([]UmpireExclusion, error) {
	rows, err := q.db.QueryContext(ctx, listUmpireExclusions, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exclusions []UmpireExclusion
	for rows.Next() {
		var e UmpireExclusion
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.UmpireID, &e.StartDate, &e.EndDate, &e.Reason, &e.Enabled); err != nil {
			return nil, err
		}
		exclusions = append(exclusions, e)
	}
	return exclusions, rows.Err()
}

type UpdateUmpireExclusionParams struct {
	ID        int64
	SeasonID  int64
	UmpireID  int64
	StartDate string
	EndDate   string
	Reason    sql.NullString
	Enabled   bool
}

const updateUmpireExclusion = `
UPDATE umpire_exclusions
SET umpire_id = ?, start_date = ?, end_date = ?, reason = ?, enabled = ?
WHERE id = ? AND season_id = ?
`

func (q *Queries) UpdateUmpireExclusion(ctx context.Context, arg UpdateUmpireExclusionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUmpireExclusion,
		arg.UmpireID, arg.StartDate, arg.EndDate, arg.Reason, arg.Enabled, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteUmpireExclusion = `
DELETE FROM umpire_exclusions WHERE id = ? AND season_id = ?
`

func (q *Queries) DeleteUmpireExclusion(ctx context.Context, arg DeleteExclusionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteUmpireExclusion, arg.ID, arg.SeasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
