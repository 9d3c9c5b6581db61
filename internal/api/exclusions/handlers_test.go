// internal/api/exclusions/handlers_test.go
package exclusions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appdb "github.com/bstan/leaguesched/internal/db"
	"github.com/bstan/leaguesched/internal/testutil"
)

type testEnv struct {
	db      *appdb.DB
	mux     *http.ServeMux
	account appdb.Account
	season  appdb.Season
	umpire  appdb.Umpire
	team    appdb.TeamSeason
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	account, err := database.Queries.CreateAccount(ctx, "Riverside Youth League")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	season, err := database.Queries.CreateSeason(ctx, appdb.CreateSeasonParams{
		AccountID: account.ID,
		Name:      "Summer 2026",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-30",
	})
	if err != nil {
		t.Fatalf("create season: %v", err)
	}
	umpire, err := database.Queries.CreateUmpire(ctx, appdb.CreateUmpireParams{AccountID: account.ID, Name: "Sam"})
	if err != nil {
		t.Fatalf("create umpire: %v", err)
	}
	league, err := database.Queries.CreateLeagueSeason(ctx, appdb.CreateLeagueSeasonParams{SeasonID: season.ID, Name: "U12"})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	team, err := database.Queries.CreateTeamSeason(ctx, appdb.CreateTeamSeasonParams{LeagueSeasonID: league.ID, Name: "Hawks"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	h := New(database)
	mux := http.NewServeMux()
	const base = "/api/accounts/{accountId}/seasons/{seasonId}"
	mux.HandleFunc("GET "+base+"/season-exclusions", h.HandleListSeasonExclusions)
	mux.HandleFunc("POST "+base+"/season-exclusions", h.HandleCreateSeasonExclusion)
	mux.HandleFunc("PUT "+base+"/season-exclusions/{exclusionId}", h.HandleUpdateSeasonExclusion)
	mux.HandleFunc("DELETE "+base+"/season-exclusions/{exclusionId}", h.HandleDeleteSeasonExclusion)
	mux.HandleFunc("GET "+base+"/team-exclusions", h.HandleListTeamExclusions)
	mux.HandleFunc("POST "+base+"/team-exclusions", h.HandleCreateTeamExclusion)
	mux.HandleFunc("PUT "+base+"/team-exclusions/{exclusionId}", h.HandleUpdateTeamExclusion)
	mux.HandleFunc("DELETE "+base+"/team-exclusions/{exclusionId}", h.HandleDeleteTeamExclusion)
	mux.HandleFunc("GET "+base+"/umpire-exclusions", h.HandleListUmpireExclusions)
	mux.HandleFunc("POST "+base+"/umpire-exclusions", h.HandleCreateUmpireExclusion)
	mux.HandleFunc("PUT "+base+"/umpire-exclusions/{exclusionId}", h.HandleUpdateUmpireExclusion)
	mux.HandleFunc("DELETE "+base+"/umpire-exclusions/{exclusionId}", h.HandleDeleteUmpireExclusion)

	return &testEnv{db: database, mux: mux, account: account, season: season, umpire: umpire, team: team}
}

func (e *testEnv) path(suffix string) string {
	return fmt.Sprintf("/api/accounts/%d/seasons/%d%s", e.account.ID, e.season.ID, suffix)
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func TestSeasonExclusionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"startDate": "2026-06-10",
		"endDate":   "2026-06-12",
		"reason":    "Tournament weekend",
		"enabled":   true,
	}
	w := env.do(t, http.MethodPost, env.path("/season-exclusions"), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	var created seasonExclusionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.SeasonID != env.season.ID || created.Reason == nil || *created.Reason != "Tournament weekend" {
		t.Errorf("created = %+v", created)
	}

	body["endDate"] = "2026-06-14"
	w = env.do(t, http.MethodPut, env.path(fmt.Sprintf("/season-exclusions/%d", created.ID)), body)
	if w.Code != http.StatusNoContent {
		t.Fatalf("update: status %d, body %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, env.path("/season-exclusions"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var listed []seasonExclusionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].EndDate != "2026-06-14" {
		t.Errorf("listed = %+v", listed)
	}

	w = env.do(t, http.MethodDelete, env.path(fmt.Sprintf("/season-exclusions/%d", created.ID)), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, env.path(fmt.Sprintf("/season-exclusions/%d", created.ID)), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete again: status = %d, want 404", w.Code)
	}
}

func TestSeasonExclusionRejectsBadDates(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing end date", body: map[string]any{"startDate": "2026-06-10", "enabled": true}},
		{name: "malformed date", body: map[string]any{"startDate": "06/10/2026", "endDate": "2026-06-12", "enabled": true}},
		{name: "inverted range", body: map[string]any{"startDate": "2026-06-12", "endDate": "2026-06-10", "enabled": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, env.path("/season-exclusions"), tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestTeamExclusionValidatesTeam(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"teamSeasonId": env.team.ID,
		"startDate":    "2026-06-10",
		"endDate":      "2026-06-12",
		"enabled":      true,
	}
	w := env.do(t, http.MethodPost, env.path("/team-exclusions"), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	var created teamExclusionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.TeamSeasonID != env.team.ID {
		t.Errorf("created = %+v", created)
	}

	body["teamSeasonId"] = int64(9999)
	w = env.do(t, http.MethodPost, env.path("/team-exclusions"), body)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown team: status = %d, want 404", w.Code)
	}

	// A team from another season's league is not visible here.
	otherSeason, err := env.db.Queries.CreateSeason(context.Background(), appdb.CreateSeasonParams{
		AccountID: env.account.ID,
		Name:      "Fall 2026",
		StartDate: "2026-09-01",
		EndDate:   "2026-10-31",
	})
	if err != nil {
		t.Fatalf("create season: %v", err)
	}
	otherLeague, err := env.db.Queries.CreateLeagueSeason(context.Background(), appdb.CreateLeagueSeasonParams{SeasonID: otherSeason.ID, Name: "U14"})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	otherTeam, err := env.db.Queries.CreateTeamSeason(context.Background(), appdb.CreateTeamSeasonParams{LeagueSeasonID: otherLeague.ID, Name: "Foxes"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	body["teamSeasonId"] = otherTeam.ID
	w = env.do(t, http.MethodPost, env.path("/team-exclusions"), body)
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-season team: status = %d, want 404", w.Code)
	}
}

func TestUmpireExclusionValidatesUmpire(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"umpireId":  env.umpire.ID,
		"startDate": "2026-06-10",
		"endDate":   "2026-06-12",
		"enabled":   true,
	}
	w := env.do(t, http.MethodPost, env.path("/umpire-exclusions"), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	var created umpireExclusionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.UmpireID != env.umpire.ID {
		t.Errorf("created = %+v", created)
	}

	body["umpireId"] = int64(9999)
	w = env.do(t, http.MethodPost, env.path("/umpire-exclusions"), body)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown umpire: status = %d, want 404", w.Code)
	}

	w = env.do(t, http.MethodGet, env.path("/umpire-exclusions"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var listed []umpireExclusionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("listed = %+v", listed)
	}
}
