// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
app:
  name: leaguesched
  environment: test
  port: 8080
database:
  driver: sqlite
  filename: data/league.db
scheduler:
  game_duration_minutes: 90
  umpires_per_game: 2
  solver_step_budget: 1000
  solver_time_budget_seconds: 5
  run_cache_ttl_minutes: 30
  run_cache_sweep_cron: "*/5 * * * *"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "leaguesched" || cfg.App.Port != 8080 {
		t.Errorf("app config = %+v", cfg.App)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Filename != "data/league.db" {
		t.Errorf("database config = %+v", cfg.Database)
	}
	if cfg.GameDuration() != 90*time.Minute {
		t.Errorf("GameDuration = %v, want 90m", cfg.GameDuration())
	}
	if cfg.SolverTimeBudget() != 5*time.Second {
		t.Errorf("SolverTimeBudget = %v, want 5s", cfg.SolverTimeBudget())
	}
	if cfg.RunCacheTTL() != 30*time.Minute {
		t.Errorf("RunCacheTTL = %v, want 30m", cfg.RunCacheTTL())
	}
	if cfg.Scheduler.UmpiresPerGame != 2 {
		t.Errorf("UmpiresPerGame = %d, want 2", cfg.Scheduler.UmpiresPerGame)
	}
}

func TestLoadAppliesSchedulerDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  name: leaguesched
  port: 8080
database:
  driver: sqlite
  filename: data/league.db
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scheduler.GameDurationMinutes != 120 {
		t.Errorf("default game duration = %d, want 120", cfg.Scheduler.GameDurationMinutes)
	}
	if cfg.Scheduler.UmpiresPerGame != 1 {
		t.Errorf("default umpires per game = %d, want 1", cfg.Scheduler.UmpiresPerGame)
	}
	if cfg.Scheduler.SolverStepBudget != 250000 {
		t.Errorf("default step budget = %d", cfg.Scheduler.SolverStepBudget)
	}
	if cfg.Scheduler.RunCacheSweepCron == "" {
		t.Error("default sweep cron not applied")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mangle  func(string) string
		wantMsg string
	}{
		{
			name:    "missing app name",
			mangle:  func(y string) string { return strings.Replace(y, "name: leaguesched", "name: \"\"", 1) },
			wantMsg: "app name is required",
		},
		{
			name:    "unsupported driver",
			mangle:  func(y string) string { return strings.Replace(y, "driver: sqlite", "driver: oracle", 1) },
			wantMsg: "unsupported database driver",
		},
		{
			name:    "missing sqlite filename",
			mangle:  func(y string) string { return strings.Replace(y, "filename: data/league.db", "filename: \"\"", 1) },
			wantMsg: "database filename is required",
		},
		{
			name:    "game duration out of range",
			mangle:  func(y string) string { return strings.Replace(y, "game_duration_minutes: 90", "game_duration_minutes: 2000", 1) },
			wantMsg: "game duration",
		},
		{
			name:    "bad sweep cron",
			mangle:  func(y string) string { return strings.Replace(y, `"*/5 * * * *"`, `"not a cron"`, 1) },
			wantMsg: "cron expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mangle(validYAML)))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
