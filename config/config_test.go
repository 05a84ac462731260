package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rest-planner/config"
	"github.com/warp/rest-planner/generic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "planner.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Planner.MinRest)
	assert.Equal(t, "FR", cfg.Planner.CountryCode)
	assert.Equal(t, 24*time.Hour, cfg.Holidays.CacheTTL)
	assert.True(t, cfg.Jobs.Enabled)
	assert.Equal(t, time.Hour, cfg.Jobs.Retention)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	// GIVEN: A file setting a few keys
	path := writeConfig(t, `
server:
  port: 9090
planner:
  country_code: de
  subdivision: by
  min_rest: 4
  weekend_days: [friday, saturday]
holidays:
  cache_ttl: 2h
jobs:
  retention: 30m
`)

	// WHEN: Loading it
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN: File values win, the rest keeps its defaults
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "planner.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.Holidays.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Jobs.Retention)

	// AND: Plan defaults are typed and normalized
	defaults, err := cfg.PlanDefaults(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2026, defaults.Year)
	assert.Equal(t, "DE", defaults.CountryCode)
	assert.Equal(t, "BY", defaults.Subdivision)
	assert.Equal(t, 4, defaults.MinRest)
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, defaults.WeekendDays)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("RESTPLANNER_SERVER_PORT", "7070")
	t.Setenv("RESTPLANNER_LOGGING_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"port", "server:\n  port: 0\n", "server.port"},
		{"level", "logging:\n  level: loud\n", "logging.level"},
		{"format", "logging:\n  format: xml\n", "logging.format"},
		{"min rest", "planner:\n  min_rest: 0\n", "planner.min_rest"},
		{"year", "planner:\n  year: 1200\n", "planner.year"},
		{"weekday", "planner:\n  weekend_days: [caturday]\n", "planner.weekend_days[0]"},
		{"empty database", "database:\n  path: \"\"\n", "database.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))

			var cfgErr *generic.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestPlanDefaults_CurrentYearAndDefaultWeekend(t *testing.T) {
	cfg := config.Default()

	defaults, err := cfg.PlanDefaults(time.Date(2031, time.January, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 2031, defaults.Year)
	assert.Nil(t, defaults.WeekendDays)
}
