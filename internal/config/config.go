// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// SchedulerConfig carries the solver and run-cache tuning knobs.
type SchedulerConfig struct {
	GameDurationMinutes     int    `yaml:"game_duration_minutes"`
	UmpiresPerGame          int    `yaml:"umpires_per_game"`
	SolverStepBudget        int    `yaml:"solver_step_budget"`
	SolverTimeBudgetSeconds int    `yaml:"solver_time_budget_seconds"`
	RunCacheTTLMinutes      int    `yaml:"run_cache_ttl_minutes"`
	RunCacheSweepCron       string `yaml:"run_cache_sweep_cron"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.GameDurationMinutes == 0 {
		c.Scheduler.GameDurationMinutes = 120
	}
	if c.Scheduler.UmpiresPerGame == 0 {
		c.Scheduler.UmpiresPerGame = 1
	}
	if c.Scheduler.SolverStepBudget == 0 {
		c.Scheduler.SolverStepBudget = 250000
	}
	if c.Scheduler.SolverTimeBudgetSeconds == 0 {
		c.Scheduler.SolverTimeBudgetSeconds = 20
	}
	if c.Scheduler.RunCacheTTLMinutes == 0 {
		c.Scheduler.RunCacheTTLMinutes = 60
	}
	if c.Scheduler.RunCacheSweepCron == "" {
		c.Scheduler.RunCacheSweepCron = "*/10 * * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Scheduler.GameDurationMinutes < 1 || c.Scheduler.GameDurationMinutes > 1440 {
		return fmt.Errorf("scheduler game duration must be between 1 and 1440 minutes")
	}
	if c.Scheduler.UmpiresPerGame < 0 {
		return fmt.Errorf("scheduler umpires per game must not be negative")
	}
	if c.Scheduler.SolverStepBudget < 1 {
		return fmt.Errorf("scheduler solver step budget must be positive")
	}
	if c.Scheduler.SolverTimeBudgetSeconds < 1 {
		return fmt.Errorf("scheduler solver time budget must be positive")
	}
	if c.Scheduler.RunCacheTTLMinutes < 1 {
		return fmt.Errorf("scheduler run cache TTL must be positive")
	}
	if _, err := cron.ParseStandard(c.Scheduler.RunCacheSweepCron); err != nil {
		return fmt.Errorf("invalid run cache sweep cron expression: %w", err)
	}

	return nil
}

// GameDuration returns the configured default game duration.
func (c *Config) GameDuration() time.Duration {
	return time.Duration(c.Scheduler.GameDurationMinutes) * time.Minute
}

// SolverTimeBudget returns the configured solver wall-clock budget.
func (c *Config) SolverTimeBudget() time.Duration {
	return time.Duration(c.Scheduler.SolverTimeBudgetSeconds) * time.Second
}

// RunCacheTTL returns the configured solve-run retention window.
func (c *Config) RunCacheTTL() time.Duration {
	return time.Duration(c.Scheduler.RunCacheTTLMinutes) * time.Minute
}
