// internal/db/models.go
package db

import (
	"database/sql"
	"time"
)

// Game statuses stored in games.game_status.
const (
	GameStatusUnscheduled   = "unscheduled"
	GameStatusScheduled     = "scheduled"
	GameStatusReschedulable = "reschedulable"
	GameStatusCompleted     = "completed"
	GameStatusCanceled      = "canceled"
)

type Account struct {
	ID   int64
	Name string
}

type Season struct {
	ID        int64
	AccountID int64
	Name      string
	StartDate string
	EndDate   string
}

type Field struct {
	ID        int64
	AccountID int64
	Name      string
}

type Umpire struct {
	ID        int64
	AccountID int64
	Name      string
}

type LeagueSeason struct {
	ID       int64
	SeasonID int64
	Name     string
}

type TeamSeason struct {
	ID             int64
	LeagueSeasonID int64
	Name           string
}

type Game struct {
	ID                  int64
	LeagueSeasonID      int64
	HomeTeamSeasonID    int64
	VisitorTeamSeasonID int64
	FieldID             sql.NullInt64
	GameDate            sql.NullTime
	GameEndDate         sql.NullTime
	GameStatus          string
	Version             int64
	UpdatedAt           time.Time
}

type GameUmpire struct {
	GameID   int64
	UmpireID int64
}

type FieldAvailabilityRule struct {
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

type FieldExclusionDate struct {
	ID       int64
	SeasonID int64
	FieldID  int64
	Date     string
	Note     sql.NullString
	Enabled  bool
}

type SeasonExclusion struct {
	ID        int64
	SeasonID  int64
	StartDate string
	EndDate   string
	Reason    sql.NullString
	Enabled   bool
}

type TeamExclusion struct {
	ID           int64
	SeasonID     int64
	TeamSeasonID int64
	StartDate    string
	EndDate      string
	Reason       sql.NullString
	Enabled      bool
}

type UmpireExclusion struct {
	ID        int64
	SeasonID  int64
	UmpireID  int64
	StartDate string
	EndDate   string
	Reason    sql.NullString
	Enabled   bool
}
