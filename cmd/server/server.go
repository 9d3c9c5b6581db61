// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bstan/leaguesched/internal/api"
	"github.com/bstan/leaguesched/internal/api/availabilityrules"
	"github.com/bstan/leaguesched/internal/api/exclusions"
	"github.com/bstan/leaguesched/internal/api/schedulerapi"
	"github.com/bstan/leaguesched/internal/api/seasons"
	"github.com/bstan/leaguesched/internal/config"
	"github.com/bstan/leaguesched/internal/db"
	"github.com/bstan/leaguesched/internal/runcache"
)

func newServer(cfg *config.Config, database *db.DB, cache *runcache.Cache) *http.Server {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router, cfg, database, cache)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, database *db.DB, cache *runcache.Cache) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	const base = "/api/accounts/{accountId}/seasons/{seasonId}"

	rules := availabilityrules.New(database)
	mux.HandleFunc("GET "+base+"/field-availability-rules", rules.HandleListRules)
	mux.HandleFunc("POST "+base+"/field-availability-rules", rules.HandleCreateRule)
	mux.HandleFunc("PUT "+base+"/field-availability-rules/{ruleId}", rules.HandleUpdateRule)
	mux.HandleFunc("DELETE "+base+"/field-availability-rules/{ruleId}", rules.HandleDeleteRule)
	mux.HandleFunc("GET "+base+"/field-exclusion-dates", rules.HandleListExclusionDates)
	mux.HandleFunc("POST "+base+"/field-exclusion-dates", rules.HandleCreateExclusionDate)
	mux.HandleFunc("PUT "+base+"/field-exclusion-dates/{exclusionId}", rules.HandleUpdateExclusionDate)
	mux.HandleFunc("DELETE "+base+"/field-exclusion-dates/{exclusionId}", rules.HandleDeleteExclusionDate)

	excl := exclusions.New(database)
	mux.HandleFunc("GET "+base+"/season-exclusions", excl.HandleListSeasonExclusions)
	mux.HandleFunc("POST "+base+"/season-exclusions", excl.HandleCreateSeasonExclusion)
	mux.HandleFunc("PUT "+base+"/season-exclusions/{exclusionId}", excl.HandleUpdateSeasonExclusion)
	mux.HandleFunc("DELETE "+base+"/season-exclusions/{exclusionId}", excl.HandleDeleteSeasonExclusion)
	mux.HandleFunc("GET "+base+"/team-exclusions", excl.HandleListTeamExclusions)
	mux.HandleFunc("POST "+base+"/team-exclusions", excl.HandleCreateTeamExclusion)
	mux.HandleFunc("PUT "+base+"/team-exclusions/{exclusionId}", excl.HandleUpdateTeamExclusion)
	mux.HandleFunc("DELETE "+base+"/team-exclusions/{exclusionId}", excl.HandleDeleteTeamExclusion)
	mux.HandleFunc("GET "+base+"/umpire-exclusions", excl.HandleListUmpireExclusions)
	mux.HandleFunc("POST "+base+"/umpire-exclusions", excl.HandleCreateUmpireExclusion)
	mux.HandleFunc("PUT "+base+"/umpire-exclusions/{exclusionId}", excl.HandleUpdateUmpireExclusion)
	mux.HandleFunc("DELETE "+base+"/umpire-exclusions/{exclusionId}", excl.HandleDeleteUmpireExclusion)

	directory := seasons.New(database)
	mux.HandleFunc("GET "+base+"/fields", directory.HandleListFields)
	mux.HandleFunc("GET "+base+"/umpires", directory.HandleListUmpires)
	mux.HandleFunc("GET "+base+"/teams", directory.HandleListTeams)
	mux.HandleFunc("GET "+base+"/games", directory.HandleListGames)
	mux.HandleFunc("POST "+base+"/games", directory.HandleCreateGame)

	scheduler := schedulerapi.New(database, cache, cfg)
	mux.HandleFunc("GET "+base+"/scheduler/problem-spec-preview", scheduler.HandleProblemSpecPreview)
	mux.HandleFunc("POST "+base+"/scheduler/solve", scheduler.HandleSolve)
	mux.HandleFunc("POST "+base+"/scheduler/apply", scheduler.HandleApply)
}
