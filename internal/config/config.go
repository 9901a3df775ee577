// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is the root of the per-season stat tables.
	DataDir string `koanf:"data_dir"`

	// ArchivePath is the SQLite file recording refresh runs. Empty disables
	// the archive.
	ArchivePath string `koanf:"archive_path"`

	// Season and SeasonType select what a refresh computes by default.
	Season     string `koanf:"season"`
	SeasonType string `koanf:"season_type"`

	WorkerCount int `koanf:"worker_count"`
	QueueSize   int `koanf:"queue_size"`
	DedupeSize  int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps ?limit on board endpoints.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	RefreshOnStart bool `koanf:"refresh_on_start"`
	WatchDataDir   bool `koanf:"watch_data_dir"`

	// RefreshRatePerMin throttles POST /refresh; 0 disables.
	RefreshRatePerMin float64 `koanf:"refresh_rate_per_min"`

	// Elo replay constants.
	EloBase          float64 `koanf:"elo_base"`
	EloK             float64 `koanf:"elo_k"`
	EloHomeAdvantage float64 `koanf:"elo_home_advantage"`

	// AllowedTeams limits team ratings and the Elo replay to these team
	// ids, e.g. the 30 franchise ids. Empty keeps every team. From env it
	// is a comma-separated list.
	AllowedTeams []int64 `koanf:"allowed_teams"`

	// Normalization.
	WinsorLow     float64 `koanf:"winsor_low"`
	WinsorHigh    float64 `koanf:"winsor_high"`
	ConfidenceCap float64 `koanf:"confidence_cap"`

	// Player qualification.
	MinMinutes float64 `koanf:"min_minutes"`
	MinGames   float64 `koanf:"min_games"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DataDir:             "data",
		ArchivePath:         "data/courtside.db",
		Season:              "2024-25",
		SeasonType:          "Regular Season",
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           64,
		DedupeSize:          4096,
		MaxLeaderboardLimit: 500,
		RefreshOnStart:      true,
		WatchDataDir:        false,
		RefreshRatePerMin:   6,
		EloBase:             1500,
		EloK:                20,
		EloHomeAdvantage:    70,
		WinsorLow:           0.02,
		WinsorHigh:          0.98,
		ConfidenceCap:       24,
		MinMinutes:          12,
		MinGames:            5,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("data_dir must not be empty: %w", ErrInvalidConfig)
	case c.WinsorLow < 0 || c.WinsorHigh > 1 || c.WinsorLow >= c.WinsorHigh:
		return fmt.Errorf("winsor bounds %.3f..%.3f must satisfy 0 <= low < high <= 1: %w", c.WinsorLow, c.WinsorHigh, ErrInvalidConfig)
	case c.ConfidenceCap <= 0:
		return fmt.Errorf("confidence_cap must be positive: %w", ErrInvalidConfig)
	case c.EloK <= 0:
		return fmt.Errorf("elo_k must be positive: %w", ErrInvalidConfig)
	case c.RefreshRatePerMin < 0:
		return fmt.Errorf("refresh_rate_per_min must not be negative: %w", ErrInvalidConfig)
	}
	for _, id := range c.AllowedTeams {
		if id <= 0 {
			return fmt.Errorf("allowed_teams contains invalid id %d: %w", id, ErrInvalidConfig)
		}
	}
	return nil
}
