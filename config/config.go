/*
Package config loads the planner configuration.

PURPOSE:
  One place for every tunable of the server and the CLI: listen address,
  database path, logging, plan defaults, holiday sources and the batch job
  runner. Values come from a YAML file, overridden by environment
  variables, overridden by command-line flags bound by the binaries.

SOURCES (later wins):
  1. Built-in defaults (setDefaults)
  2. config.yaml in ".", "$HOME/.rest-planner" or "/etc/rest-planner",
     or the file given with --config
  3. Environment: RESTPLANNER_<SECTION>_<KEY>, e.g. RESTPLANNER_SERVER_PORT

EXAMPLE config.yaml:
  server:
    port: 8080
    allowed_origins: ["http://localhost:5173"]
  database:
    path: ./planner.db
  logging:
    level: info
    format: json
    file: ./logs/planner.log
  planner:
    country_code: FR
    min_rest: 3
    weekend_days: [saturday, sunday]
  holidays:
    file: ./holidays.yaml
    cache_ttl: 24h
  jobs:
    enabled: true
    workers: 2

SEE ALSO:
  - logging/logging.go: Builds the zap logger from LoggingConfig
  - cmd/server/main.go, cmd/planner/main.go: Flag bindings
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RESTPLANNER"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Holidays HolidaysConfig `mapstructure:"holidays"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the SQLite store. ":memory:" keeps everything
// in memory.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	File       string `mapstructure:"file"`   // Empty = stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// PlannerConfig holds the defaults applied to plan requests.
type PlannerConfig struct {
	Year         int      `mapstructure:"year"` // 0 = current year
	CountryCode  string   `mapstructure:"country_code"`
	Subdivision  string   `mapstructure:"subdivision"`
	MinRest      int      `mapstructure:"min_rest"`
	WeekendDays  []string `mapstructure:"weekend_days"`
	BatchWorkers int      `mapstructure:"batch_workers"` // 0 = one per CPU
}

// HolidaysConfig configures the holiday providers.
type HolidaysConfig struct {
	File     string        `mapstructure:"file"` // Optional YAML calendars tried before the built-in rules
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// JobsConfig configures the background batch runner.
type JobsConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Workers         int           `mapstructure:"workers"`
	PlanWorkers     int           `mapstructure:"plan_workers"`
	QueueSize       int           `mapstructure:"queue_size"`
	ChunkSize       int           `mapstructure:"chunk_size"`
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration. With an empty path a missing config.yaml
// is not an error: defaults and environment apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rest-planner")
		v.AddConfigPath("/etc/rest-planner")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults only hold plain values; decoding them cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.path", "planner.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("logging.compress", true)

	v.SetDefault("planner.year", 0)
	v.SetDefault("planner.country_code", "FR")
	v.SetDefault("planner.subdivision", "")
	v.SetDefault("planner.min_rest", 3)
	v.SetDefault("planner.batch_workers", 0)

	v.SetDefault("holidays.file", "")
	v.SetDefault("holidays.cache_ttl", 24*time.Hour)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.workers", 2)
	v.SetDefault("jobs.plan_workers", 0)
	v.SetDefault("jobs.queue_size", 32)
	v.SetDefault("jobs.chunk_size", 8)
	v.SetDefault("jobs.retention", time.Hour)
	v.SetDefault("jobs.cleanup_interval", 5*time.Minute)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every section. Failures are *generic.ConfigError
// naming the offending key.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &generic.ConfigError{Field: "server.port", Message: fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port)}
	}
	if c.Database.Path == "" {
		return &generic.ConfigError{Field: "database.path", Message: "is required"}
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return &generic.ConfigError{Field: "logging.level", Message: err.Error()}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return &generic.ConfigError{Field: "logging.format", Message: fmt.Sprintf("must be json or console, got %q", c.Logging.Format)}
	}

	if c.Planner.Year != 0 && (c.Planner.Year < timeoff.MinYear || c.Planner.Year > timeoff.MaxYear) {
		return &generic.ConfigError{Field: "planner.year", Message: fmt.Sprintf("must be 0 or between %d and %d", timeoff.MinYear, timeoff.MaxYear)}
	}
	if c.Planner.MinRest < 1 {
		return &generic.ConfigError{Field: "planner.min_rest", Message: "must be at least 1"}
	}
	if _, err := c.WeekendDays(); err != nil {
		return err
	}
	if c.Planner.BatchWorkers < 0 {
		return &generic.ConfigError{Field: "planner.batch_workers", Message: "must not be negative"}
	}

	if c.Holidays.CacheTTL < 0 {
		return &generic.ConfigError{Field: "holidays.cache_ttl", Message: "must not be negative"}
	}

	if c.Jobs.Workers < 0 || c.Jobs.PlanWorkers < 0 || c.Jobs.QueueSize < 0 || c.Jobs.ChunkSize < 0 {
		return &generic.ConfigError{Field: "jobs", Message: "sizes must not be negative"}
	}
	return nil
}

// WeekendDays parses planner.weekend_days. nil means the default weekend.
func (c *Config) WeekendDays() ([]time.Weekday, error) {
	if c.Planner.WeekendDays == nil {
		return nil, nil
	}
	out := make([]time.Weekday, 0, len(c.Planner.WeekendDays))
	for i, s := range c.Planner.WeekendDays {
		wd, err := generic.ParseWeekday(s)
		if err != nil {
			return nil, &generic.ConfigError{Field: fmt.Sprintf("planner.weekend_days[%d]", i), Message: err.Error()}
		}
		out = append(out, wd)
	}
	return out, nil
}

// PlanDefaults converts the planner section for the plan factory. A zero
// year resolves against now.
func (c *Config) PlanDefaults(now time.Time) (factory.PlanDefaults, error) {
	weekend, err := c.WeekendDays()
	if err != nil {
		return factory.PlanDefaults{}, err
	}
	year := c.Planner.Year
	if year == 0 {
		year = now.Year()
	}
	return factory.PlanDefaults{
		Year:        year,
		CountryCode: strings.ToUpper(c.Planner.CountryCode),
		Subdivision: strings.ToUpper(c.Planner.Subdivision),
		MinRest:     c.Planner.MinRest,
		WeekendDays: weekend,
	}, nil
}
