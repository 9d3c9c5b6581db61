// internal/db/seasons.go
package db

import (
	"context"
)

const createAccount = `
INSERT INTO accounts (name) VALUES (?) RETURNING id, name
`

func (q *Queries) CreateAccount(ctx context.Context, name string) (Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx, createAccount, name).Scan(&a.ID, &a.Name)
	return a, err
}

const getAccount = `
SELECT id, name FROM accounts WHERE id = ?
`

func (q *Queries) GetAccount(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx, getAccount, id).Scan(&a.ID, &a.Name)
	return a, err
}

type CreateSeasonParams struct {
	AccountID int64
	Name      string
	StartDate string
	EndDate   string
}

const createSeason = `
INSERT INTO seasons (account_id, name, start_date, end_date)
VALUES (?, ?, ?, ?)
RETURNING id, account_id, name, start_date, end_date
`

func (q *Queries) CreateSeason(ctx context.Context, arg CreateSeasonParams) (Season, error) {
	var s Season
	err := q.db.QueryRowContext(ctx, createSeason,
		arg.AccountID, arg.Name, arg.StartDate, arg.EndDate,
	).Scan(&s.ID, &s.AccountID, &s.Name, &s.StartDate, &s.EndDate)
	return s, err
}

type GetSeasonParams struct {
	AccountID int64
	SeasonID  int64
}

const getSeason = `
SELECT id, account_id, name, start_date, end_date
FROM seasons
WHERE id = ? AND account_id = ?
`

func (q *Queries) GetSeason(ctx context.Context, arg GetSeasonParams) (Season, error) {
	var s Season
	err := q.db.QueryRowContext(ctx, getSeason, arg.SeasonID, arg.AccountID).
		Scan(&s.ID, &s.AccountID, &s.Name, &s.StartDate, &s.EndDate)
	return s, err
}

type CreateFieldParams struct {
	AccountID int64
	Name      string
}

const createField = `
INSERT INTO fields (account_id, name) VALUES (?, ?)
RETURNING id, account_id, name
`

func (q *Queries) CreateField(ctx context.Context, arg CreateFieldParams) (Field, error) {
	var f Field
	err := q.db.QueryRowContext(ctx, createField, arg.AccountID, arg.Name).
		Scan(&f.ID, &f.AccountID, &f.Name)
	return f, err
}

type GetFieldParams struct {
	ID        int64
	AccountID int64
}

const getField = `
SELECT id, account_id, name FROM fields WHERE id = ? AND account_id = ?
`

func (q *Queries) GetField(ctx context.Context, arg GetFieldParams) (Field, error) {
	var f Field
	err := q.db.QueryRowContext(ctx, getField, arg.ID, arg.AccountID).
		Scan(&f.ID, &f.AccountID, &f.Name)
	return f, err
}

const listFields = `
SELECT id, account_id, name FROM fields WHERE account_id = ? ORDER BY id
`

func (q *Queries) ListFields(ctx context.Context, accountID int64) ([]Field, error) {
	rows, err := q.db.QueryContext(ctx, listFields, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var f Field
		if err := rows.Scan(&f.ID, &f.AccountID, &f.Name); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

type CreateUmpireParams struct {
	AccountID int64
	Name      string
}

const createUmpire = `
INSERT INTO umpires (account_id, name) VALUES (?, ?)
RETURNING id, account_id, name
`

func (q *Queries) CreateUmpire(ctx context.Context, arg CreateUmpireParams) (Umpire, error) {
	var u Umpire
	err := q.db.QueryRowContext(ctx, createUmpire, arg.AccountID, arg.Name).
		Scan(&u.ID, &u.AccountID, &u.Name)
	return u, err
}

type GetUmpireParams struct {
	ID        int64
	AccountID int64
}

const getUmpire = `
SELECT id, account_id, name FROM umpires WHERE id = ? AND account_id = ?
`

func (q *Queries) GetUmpire(ctx context.Context, arg GetUmpireParams) (Umpire, error) {
	var u Umpire
	err := q.db.QueryRowContext(ctx, getUmpire, arg.ID, arg.AccountID).
		Scan(&u.ID, &u.AccountID, &u.Name)
	return u, err
}

const listUmpires = `
SELECT id, account_id, name FROM umpires WHERE account_id = ? ORDER BY id
`

func (q *Queries) ListUmpires(ctx context.Context, accountID int64) ([]Umpire, error) {
	rows, err := q.db.QueryContext(ctx, listUmpires, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var umpires []Umpire
	for rows.Next() {
		var u Umpire
		if err := rows.Scan(&u.ID, &u.AccountID, &u.Name); err != nil {
			return nil, err
		}
		umpires = append(umpires, u)
	}
	return umpires, rows.Err()
}

type CreateLeagueSeasonParams struct {
	SeasonID int64
	Name     string
}

const createLeagueSeason = `
INSERT INTO league_seasons (season_id, name) VALUES (?, ?)
RETURNING id, season_id, name
`

func (q *Queries) CreateLeagueSeason(ctx context.Context, arg CreateLeagueSeasonParams) (LeagueSeason, error) {
	var ls LeagueSeason
	err := q.db.QueryRowContext(ctx, createLeagueSeason, arg.SeasonID, arg.Name).
		Scan(&ls.ID, &ls.SeasonID, &ls.Name)
	return ls, err
}

const listLeagueSeasons = `
SELECT id, season_id, name FROM league_seasons WHERE season_id = ? ORDER BY id
`

func (q *Queries) ListLeagueSeasons(ctx context.Context, seasonID int64) ([]LeagueSeason, error) {
	rows, err := q.db.QueryContext(ctx, listLeagueSeasons, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leagues []LeagueSeason
	for rows.Next() {
		var ls LeagueSeason
		if err := rows.Scan(&ls.ID, &ls.SeasonID, &ls.Name); err != nil {
			return nil, err
		}
		leagues = append(leagues, ls)
	}
	return leagues, rows.Err()
}

type CreateTeamSeasonParams struct {
	LeagueSeasonID int64
	Name           string
}

const createTeamSeason = `
INSERT INTO team_seasons (league_season_id, name) VALUES (?, ?)
RETURNING id, league_season_id, name
`

func (q *Queries) CreateTeamSeason(ctx context.Context, arg CreateTeamSeasonParams) (TeamSeason, error) {
	var ts TeamSeason
	err := q.db.QueryRowContext(ctx, createTeamSeason, arg.LeagueSeasonID, arg.Name).
		Scan(&ts.ID, &ts.LeagueSeasonID, &ts.Name)
	return ts, err
}

type GetTeamSeasonParams struct {
	ID       int64
	SeasonID int64
}

const getTeamSeason = `
SELECT ts.id, ts.league_season_id, ts.name
FROM team_seasons ts
JOIN league_seasons ls ON ls.id = ts.league_season_id
WHERE ts.id = ? AND ls.season_id = ?
`

func (q *Queries) GetTeamSeason(ctx context.Context, arg GetTeamSeasonParams) (TeamSeason, error) {
	var ts TeamSeason
	err := q.db.QueryRowContext(ctx, getTeamSeason, arg.ID, arg.SeasonID).
		Scan(&ts.ID, &ts.LeagueSeasonID, &ts.Name)
	return ts, err
}

const listTeamSeasons = `
SELECT ts.id, ts.league_season_id, ts.name
FROM team_seasons ts
JOIN league_seasons ls ON ls.id = ts.league_season_id
WHERE ls.season_id = ?
ORDER BY ts.id
`

func (q *Queries) ListTeamSeasons(ctx context.Context, seasonID int64) ([]TeamSeason, error) {
	rows, err := q.db.QueryContext(ctx, listTeamSeasons, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []TeamSeason
	for rows.Next() {
		var ts TeamSeason
		if err := rows.Scan(&ts.ID, &ts.LeagueSeasonID, &ts.Name); err != nil {
			return nil, err
		}
		teams = append(teams, ts)
	}
	return teams, rows.Err()
}
