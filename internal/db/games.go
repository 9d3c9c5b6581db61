// internal/db/games.go
package db

import (
	"context"
	"database/sql"
	"time"
)

type CreateGameParams struct {
	LeagueSeasonID      int64
	HomeTeamSeasonID    int64
	VisitorTeamSeasonID int64
}

const createGame = `
INSERT INTO games (league_season_id, home_team_season_id, visitor_team_season_id)
VALUES (?, ?, ?)
RETURNING id, league_season_id, home_team_season_id, visitor_team_season_id,
          field_id, game_date, game_end_date, game_status, version, updated_at
`

func (q *Queries) CreateGame(ctx context.Context, arg CreateGameParams) (Game, error) {
	var g Game
	err := q.db.QueryRowContext(ctx, createGame,
		arg.LeagueSeasonID, arg.HomeTeamSeasonID, arg.VisitorTeamSeasonID,
	).Scan(
		&g.ID, &g.LeagueSeasonID, &g.HomeTeamSeasonID, &g.VisitorTeamSeasonID,
		&g.FieldID, &g.GameDate, &g.GameEndDate, &g.GameStatus, &g.Version, &g.UpdatedAt,
	)
	return g, err
}

const getGame = `
SELECT id, league_season_id, home_team_season_id, visitor_team_season_id,
       field_id, game_date, game_end_date, game_status, version, updated_at
FROM games
WHERE id = ?
`

func (q *Queries) GetGame(ctx context.Context, id int64) (Game, error) {
	var g Game
	err := q.db.QueryRowContext(ctx, getGame, id).Scan(
		&g.ID, &g.LeagueSeasonID, &g.HomeTeamSeasonID, &g.VisitorTeamSeasonID,
		&g.FieldID, &g.GameDate, &g.GameEndDate, &g.GameStatus, &g.Version, &g.UpdatedAt,
	)
	return g, err
}

const listGamesBySeason = `
SELECT g.id, g.league_season_id, g.home_team_season_id, g.visitor_team_season_id,
       g.field_id, g.game_date, g.game_end_date, g.game_status, g.version, g.updated_at
FROM games g
JOIN league_seasons ls ON ls.id = g.league_season_id
WHERE ls.season_id = ?
ORDER BY g.id
`

func (q *Queries) ListGamesBySeason(ctx context.Context, seasonID int64) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listGamesBySeason, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

const listSchedulableGames = `
SELECT g.id, g.league_season_id, g.home_team_season_id, g.visitor_team_season_id,
       g.field_id, g.game_date, g.game_end_date, g.game_status, g.version, g.updated_at
FROM games g
JOIN league_seasons ls ON ls.id = g.league_season_id
WHERE ls.season_id = ? AND g.game_status IN (?, ?)
ORDER BY g.id
`

// ListSchedulableGames returns the season's games the solver may place:
// unscheduled games and games explicitly marked reschedulable.
func (q *Queries) ListSchedulableGames(ctx context.Context, seasonID int64) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listSchedulableGames,
		seasonID, GameStatusUnscheduled, GameStatusReschedulable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

type ListFieldGamesOverlappingParams struct {
	FieldID       int64
	OverlapStart  time.Time
	OverlapEnd    time.Time
	ExcludeGameID int64
}

const listFieldGamesOverlapping = `
SELECT id, league_season_id, home_team_season_id, visitor_team_season_id,
       field_id, game_date, game_end_date, game_status, version, updated_at
FROM games
WHERE field_id = ?
  AND game_date IS NOT NULL
  AND game_end_date IS NOT NULL
  AND game_date < ?
  AND game_end_date > ?
  AND id != ?
  AND game_status != ?
ORDER BY game_date
`

// ListFieldGamesOverlapping returns scheduled games on a field whose persisted
// [game_date, game_end_date) interval overlaps [OverlapStart, OverlapEnd).
// The comparison uses each game's own stored end time, so games of any
// duration are seen.
func (q *Queries) ListFieldGamesOverlapping(ctx context.Context, arg ListFieldGamesOverlappingParams) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listFieldGamesOverlapping,
		arg.FieldID, arg.OverlapEnd, arg.OverlapStart, arg.ExcludeGameID, GameStatusCanceled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

type ListUmpireGamesOverlappingParams struct {
	UmpireID      int64
	OverlapStart  time.Time
	OverlapEnd    time.Time
	ExcludeGameID int64
}

const listUmpireGamesOverlapping = `
SELECT g.id, g.league_season_id, g.home_team_season_id, g.visitor_team_season_id,
       g.field_id, g.game_date, g.game_end_date, g.game_status, g.version, g.updated_at
FROM games g
JOIN game_umpires gu ON gu.game_id = g.id
WHERE gu.umpire_id = ?
  AND g.game_date IS NOT NULL
  AND g.game_end_date IS NOT NULL
  AND g.game_date < ?
  AND g.game_end_date > ?
  AND g.id != ?
  AND g.game_status != ?
ORDER BY g.game_date
`

func (q *Queries) ListUmpireGamesOverlapping(ctx context.Context, arg ListUmpireGamesOverlappingParams) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listUmpireGamesOverlapping,
		arg.UmpireID, arg.OverlapEnd, arg.OverlapStart, arg.ExcludeGameID, GameStatusCanceled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

type ScheduleGameParams struct {
	ID              int64
	FieldID         int64
	GameDate        time.Time
	GameEndDate     time.Time
	ExpectedVersion int64
}

const scheduleGame = `
UPDATE games
SET field_id = ?, game_date = ?, game_end_date = ?, game_status = ?,
    version = version + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND version = ?
`

// ScheduleGame writes the assignment onto the game row guarded by a version
// compare-and-swap. It returns the number of rows updated: zero means the game
// changed since the caller read it.
func (q *Queries) ScheduleGame(ctx context.Context, arg ScheduleGameParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, scheduleGame,
		arg.FieldID, arg.GameDate, arg.GameEndDate, GameStatusScheduled, arg.ID, arg.ExpectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteGameUmpires = `
DELETE FROM game_umpires WHERE game_id = ?
`

func (q *Queries) DeleteGameUmpires(ctx context.Context, gameID int64) error {
	_, err := q.db.ExecContext(ctx, deleteGameUmpires, gameID)
	return err
}

type AddGameUmpireParams struct {
	GameID   int64
	UmpireID int64
}

const addGameUmpire = `
INSERT INTO game_umpires (game_id, umpire_id) VALUES (?, ?)
`

func (q *Queries) AddGameUmpire(ctx context.Context, arg AddGameUmpireParams) error {
	_, err := q.db.ExecContext(ctx, addGameUmpire, arg.GameID, arg.UmpireID)
	return err
}

const listGameUmpires = `
SELECT umpire_id FROM game_umpires WHERE game_id = ? ORDER BY umpire_id
`

func (q *Queries) ListGameUmpires(ctx context.Context, gameID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listGameUmpires, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var umpireIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		umpireIDs = append(umpireIDs, id)
	}
	return umpireIDs, rows.Err()
}

func scanGames(rows *sql.Rows) ([]Game, error) {
	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(
			&g.ID, &g.LeagueSeasonID, &g.HomeTeamSeasonID, &g.VisitorTeamSeasonID,
			&g.FieldID, &g.GameDate, &g.GameEndDate, &g.GameStatus, &g.Version, &g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
