// Package config defines process configuration and how it is loaded.
//
// Conventions:
//   - New returns a Config holding every default.
//   - Load layers a YAML file and environment variables over the defaults.
//   - Errors wrap this package's sentinels.
package config

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // zoneinfo for daily_timezone on hosts without it

	"github.com/okian/rosterquiz/internal/domain/daily"
	"github.com/okian/rosterquiz/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON.
	LogJSON bool `koanf:"log_json"`

	// StorePath is the SQLite file holding the rotation pool and daily state.
	// Empty keeps state in memory for the life of the process.
	StorePath string `koanf:"store_path"`

	// CatalogPath is a YAML team catalog. Empty uses the bundled one.
	CatalogPath string `koanf:"catalog_path"`

	// DailyTimezone and DailyBoundary set when the daily team rotates.
	DailyTimezone string `koanf:"daily_timezone"`
	DailyBoundary string `koanf:"daily_boundary"`

	DailyMaxMisses    int `koanf:"daily_max_misses"`
	GauntletMaxMisses int `koanf:"gauntlet_max_misses"`

	// ReverseDeckSize players are dealt; ReverseWinThreshold correct answers
	// win and ReverseMaxMisses wrong ones lose.
	ReverseDeckSize     int `koanf:"reverse_deck_size"`
	ReverseWinThreshold int `koanf:"reverse_win_threshold"`
	ReverseMaxMisses    int `koanf:"reverse_max_misses"`

	// SuggestionLimit caps /hint results; 0 means no cap.
	SuggestionLimit int `koanf:"suggestion_limit"`

	// MetricsFile receives a Prometheus text dump on exit when set. With no
	// file nothing is recorded.
	MetricsFile string `koanf:"metrics_file"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		DailyTimezone:       daily.DefaultTimezone,
		DailyBoundary:       daily.DefaultBoundary.String(),
		DailyMaxMisses:      3,
		GauntletMaxMisses:   3,
		ReverseDeckSize:     12,
		ReverseWinThreshold: 10,
		ReverseMaxMisses:    3,
		SuggestionLimit:     10,
		MetricsNamespace:    "rosterquiz",
		MetricsSubsystem:    "game",
	}
}

// Location loads DailyTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DailyTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: daily_timezone: %w", ErrInvalidConfig, err)
	}
	return loc, nil
}

// Boundary parses DailyBoundary.
func (c *Config) Boundary() (daily.TimeOfDay, error) {
	tod, err := daily.ParseTimeOfDay(c.DailyBoundary)
	if err != nil {
		return daily.TimeOfDay{}, fmt.Errorf("%w: daily_boundary: %w", ErrInvalidConfig, err)
	}
	return tod, nil
}

// Validate checks every field and reports the first problem.
func (c *Config) Validate() error {
	if err := logger.ValidateLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Boundary(); err != nil {
		return err
	}

	positive := []struct {
		key string
		val int
	}{
		{"daily_max_misses", c.DailyMaxMisses},
		{"gauntlet_max_misses", c.GauntletMaxMisses},
		{"reverse_deck_size", c.ReverseDeckSize},
		{"reverse_win_threshold", c.ReverseWinThreshold},
		{"reverse_max_misses", c.ReverseMaxMisses},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.key, p.val)
		}
	}
	if c.ReverseWinThreshold > c.ReverseDeckSize {
		return fmt.Errorf("%w: reverse_win_threshold %d exceeds reverse_deck_size %d",
			ErrInvalidConfig, c.ReverseWinThreshold, c.ReverseDeckSize)
	}
	if c.SuggestionLimit < 0 {
		return fmt.Errorf("%w: suggestion_limit must not be negative", ErrInvalidConfig)
	}
	if !metricName.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	if !metricName.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q is not a metric name", ErrInvalidConfig, c.MetricsSubsystem)
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels: %q is not a label name", ErrInvalidConfig, name)
		}
	}
	return nil
}
