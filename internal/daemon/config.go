// Package daemon manages the CartQuest daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/app/leaderboard"
)

// Config holds all daemon configuration.
type Config struct {
	Profile     ProfileConfig     `toml:"profile"`
	API         APIConfig         `toml:"api"`
	Storage     StorageConfig     `toml:"storage"`
	Rewards     RewardsConfig     `toml:"rewards"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Logging     LoggingConfig     `toml:"logging"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
}

// ProfileConfig names the local profile whose progression is served.
type ProfileConfig struct {
	Name string `toml:"name"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	CORSOrigins    []string `toml:"cors_origins"`
	RequestTimeout string   `toml:"request_timeout"`
}

// StorageConfig selects where snapshots are persisted.
type StorageConfig struct {
	Backend string `toml:"backend"` // "sqlite" or "file"
	Dir     string `toml:"dir"`
}

// RewardsConfig tunes the item economy.
type RewardsConfig struct {
	LootboxCost int64  `toml:"lootbox_cost"`
	Seed        uint64 `toml:"seed"` // 0 = unseeded
}

// LeaderboardConfig holds the ranking policy.
type LeaderboardConfig struct {
	MinWeeklyBudget   string  `toml:"min_weekly_budget"`
	SavingsWeight     float64 `toml:"savings_weight"`
	ConsistencyWeight float64 `toml:"consistency_weight"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
	File   string `toml:"file"`
}

// TelemetryConfig controls metrics and health checks.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus"`
	HealthInterval string `toml:"health_interval"`
}

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := cartquestHome()
	policy := leaderboard.DefaultPolicy()
	return Config{
		Profile: ProfileConfig{Name: "default"},
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           11480,
			CORSOrigins:    []string{"*"},
			RequestTimeout: "30s",
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Dir:     homeDir,
		},
		Rewards: RewardsConfig{LootboxCost: 0},
		Leaderboard: LeaderboardConfig{
			MinWeeklyBudget:   policy.MinWeeklyBudget.String(),
			SavingsWeight:     policy.SavingsWeight,
			ConsistencyWeight: policy.ConsistencyWeight,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Prometheus:     false,
			HealthInterval: "60s",
		},
	}
}

// Policy returns the leaderboard policy, falling back to the default floor
// when min_weekly_budget does not parse.
func (c LeaderboardConfig) Policy() leaderboard.Policy {
	p := leaderboard.DefaultPolicy()
	if floor, err := decimal.NewFromString(c.MinWeeklyBudget); err == nil && !floor.IsNegative() {
		p.MinWeeklyBudget = floor
	}
	if c.SavingsWeight > 0 || c.ConsistencyWeight > 0 {
		p.SavingsWeight = c.SavingsWeight
		p.ConsistencyWeight = c.ConsistencyWeight
	}
	return p
}

// Validate rejects settings the daemon cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("storage.backend %q: want %q or %q", c.Storage.Backend, BackendSQLite, BackendFile)
	}
	if c.Profile.Name == "" {
		return fmt.Errorf("profile.name must not be empty")
	}
	if c.Rewards.LootboxCost < 0 {
		return fmt.Errorf("rewards.lootbox_cost must not be negative")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	return nil
}

// LoadConfig reads config from ~/.cartquest/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFile(filepath.Join(cartquestHome(), "config.toml"))
}

// LoadConfigFile reads config from path, falling back to defaults when the
// file does not exist.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = cartquestHome()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.cartquest/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(cartquestHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// cartquestHome returns the CartQuest data directory.
func cartquestHome() string {
	if env := os.Getenv("CARTQUEST_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cartquest")
}

// Home is exported for use by other packages.
func Home() string {
	return cartquestHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
