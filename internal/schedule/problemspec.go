// internal/schedule/problemspec.go
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bstan/leaguesched/internal/availability"
	appdb "github.com/bstan/leaguesched/internal/db"
)

var ErrSeasonNotFound = errors.New("season not found")

// BuildParams narrows the games included in a problem spec. Zero values mean
// no filtering. Filters are typed rather than free-form maps.
type BuildParams struct {
	AccountID int64
	SeasonID  int64

	GameIDs        []int64
	LeagueSeasonID int64
	TeamSeasonID   int64

	GameDuration   time.Duration
	UmpiresPerGame int
}

// BuildProblemSpec assembles the immutable solver input for a season: all
// schedulable games (optionally filtered), the enabled availability and
// exclusion configuration, and the field/umpire directory. Everything is read
// in a single transaction so the snapshot is self-consistent.
func BuildProblemSpec(ctx context.Context, database *appdb.DB, params BuildParams) (*ProblemSpec, error) {
	if params.GameDuration <= 0 {
		return nil, fmt.Errorf("game duration must be positive")
	}
	if params.UmpiresPerGame < 0 {
		return nil, fmt.Errorf("umpires per game must not be negative")
	}

	spec := &ProblemSpec{
		AccountID:      params.AccountID,
		SeasonID:       params.SeasonID,
		GeneratedAt:    time.Now().UTC(),
		GameDuration:   params.GameDuration,
		UmpiresPerGame: params.UmpiresPerGame,
	}

	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		q := txdb.Queries

		season, err := q.GetSeason(ctx, appdb.GetSeasonParams{
			AccountID: params.AccountID,
			SeasonID:  params.SeasonID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSeasonNotFound
			}
			return fmt.Errorf("load season: %w", err)
		}

		spec.SeasonStart, err = availability.ParseDate(season.StartDate, time.UTC)
		if err != nil {
			return fmt.Errorf("season start date: %w", err)
		}
		spec.SeasonEnd, err = availability.ParseDate(season.EndDate, time.UTC)
		if err != nil {
			return fmt.Errorf("season end date: %w", err)
		}

		games, err := q.ListSchedulableGames(ctx, params.SeasonID)
		if err != nil {
			return fmt.Errorf("load games: %w", err)
		}
		spec.Games = filterGames(games, params)

		if spec.Fields, err = q.ListFields(ctx, params.AccountID); err != nil {
			return fmt.Errorf("load fields: %w", err)
		}
		if spec.Umpires, err = q.ListUmpires(ctx, params.AccountID); err != nil {
			return fmt.Errorf("load umpires: %w", err)
		}
		if spec.AvailabilityRules, err = q.ListEnabledFieldAvailabilityRules(ctx, params.SeasonID); err != nil {
			return fmt.Errorf("load availability rules: %w", err)
		}
		if spec.FieldExclusions, err = q.ListEnabledFieldExclusionDates(ctx, params.SeasonID); err != nil {
			return fmt.Errorf("load field exclusion dates: %w", err)
		}
		if spec.SeasonExclusions, err = q.ListSeasonExclusions(ctx, params.SeasonID); err != nil {
			return fmt.Errorf("load season exclusions: %w", err)
		}
		if spec.TeamExclusions, err = q.ListTeamExclusions(ctx, params.SeasonID); err != nil {
			return fmt.Errorf("load team exclusions: %w", err)
		}
		if spec.UmpireExclusions, err = q.ListUmpireExclusions(ctx, params.SeasonID); err != nil {
			return fmt.Errorf("load umpire exclusions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return spec, nil
}

func filterGames(games []appdb.Game, params BuildParams) []appdb.Game {
	wantIDs := make(map[int64]struct{}, len(params.GameIDs))
	for _, id := range params.GameIDs {
		wantIDs[id] = struct{}{}
	}

	var filtered []appdb.Game
	for _, g := range games {
		if len(wantIDs) > 0 {
			if _, ok := wantIDs[g.ID]; !ok {
				continue
			}
		}
		if params.LeagueSeasonID != 0 && g.LeagueSeasonID != params.LeagueSeasonID {
			continue
		}
		if params.TeamSeasonID != 0 &&
			g.HomeTeamSeasonID != params.TeamSeasonID &&
			g.VisitorTeamSeasonID != params.TeamSeasonID {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered
}
