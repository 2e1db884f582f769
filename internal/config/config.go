// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/memoryleak07/GFScraper/internal/flights"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SearchConfig is the on-disk form of the search space.
type SearchConfig struct {
	From           []string `mapstructure:"from"`
	To             []string `mapstructure:"to"`
	FirstDeparture string   `mapstructure:"first_departure"`
	LastDeparture  string   `mapstructure:"last_departure"`
	StayDays       int      `mapstructure:"stay_days"`
	FlexDays       int      `mapstructure:"flex_days"`
	WeekendOnly    bool     `mapstructure:"weekend_only"`
}

// Spec parses the date bounds and returns the enumerator input.
func (c SearchConfig) Spec() (flights.SearchSpec, error) {
	first, err := time.Parse(flights.DateLayout, c.FirstDeparture)
	if err != nil {
		return flights.SearchSpec{}, fmt.Errorf("parse search.first_departure: %w", err)
	}
	last, err := time.Parse(flights.DateLayout, c.LastDeparture)
	if err != nil {
		return flights.SearchSpec{}, fmt.Errorf("parse search.last_departure: %w", err)
	}
	return flights.SearchSpec{
		From:           c.From,
		To:             c.To,
		FirstDeparture: first,
		LastDeparture:  last,
		StayDays:       c.StayDays,
		FlexDays:       c.FlexDays,
		WeekendOnly:    c.WeekendOnly,
	}, nil
}

// ScraperConfig governs executor and fetch session behavior.
type ScraperConfig struct {
	Concurrency       int    `mapstructure:"concurrency"`
	MaxAttempts       int    `mapstructure:"max_attempts"`
	BackoffSeconds    int    `mapstructure:"backoff_seconds"`
	NavTimeoutSeconds int    `mapstructure:"nav_timeout_seconds"`
	Headless          bool   `mapstructure:"headless"`
	UserAgent         string `mapstructure:"user_agent"`
	ChromePath        string `mapstructure:"chrome_path"`
}

// Backoff converts the retry wait into a duration.
func (c ScraperConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffSeconds) * time.Second
}

// NavTimeout converts the navigation timeout into a duration.
func (c ScraperConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSeconds) * time.Second
}

// StorageConfig sets destinations for run results.
type StorageConfig struct {
	ResultsDir string         `mapstructure:"results_dir"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig enables the optional Postgres sink when DSN is set.
type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	OutcomeTable string `mapstructure:"outcome_table"`
	SummaryTable string `mapstructure:"summary_table"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GFSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.from", []string{"FCO", "NAP"})
	v.SetDefault("search.to", []string{"MDE", "BOG", "CTG"})
	v.SetDefault("search.stay_days", 20)
	v.SetDefault("search.flex_days", 4)
	v.SetDefault("search.weekend_only", false)
	v.SetDefault("scraper.concurrency", 3)
	v.SetDefault("scraper.max_attempts", 3)
	v.SetDefault("scraper.backoff_seconds", 2)
	v.SetDefault("scraper.nav_timeout_seconds", 45)
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.user_agent",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("storage.results_dir", "results")
	v.SetDefault("storage.postgres.outcome_table", "flight_outcomes")
	v.SetDefault("storage.postgres.summary_table", "run_summaries")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.Concurrency <= 0 {
		return fmt.Errorf("scraper.concurrency must be > 0")
	}
	if c.Scraper.MaxAttempts <= 0 {
		return fmt.Errorf("scraper.max_attempts must be > 0")
	}
	if c.Scraper.BackoffSeconds < 0 {
		return fmt.Errorf("scraper.backoff_seconds must be >= 0")
	}
	if strings.TrimSpace(c.Storage.ResultsDir) == "" {
		return fmt.Errorf("storage.results_dir is required")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	if c.Search.FirstDeparture != "" || c.Search.LastDeparture != "" {
		if _, err := c.Search.Spec(); err != nil {
			return err
		}
	}
	return nil
}
