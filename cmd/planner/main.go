/*
main.go - Command-line front end for the leave optimizer

PURPOSE:
  Runs the same planner as the HTTP API from a terminal: one plan at a
  time with a readable summary, a batch of plan files, or a look at the
  holiday calendars behind them.

COMMANDS:
  planner optimize   Optimize one plan (flags and/or --input file)
  planner batch      Optimize several plan files in parallel
  planner holidays   Print the resolved holidays of a region
  planner regions    List the supported countries and subdivisions

GLOBAL FLAGS:
  --config     Config file (same file as the server)
  --db         SQLite database: adds custom holidays, enables --save
  --log-level  Log level, logs go to stderr (default: warn)

EXAMPLES:
  planner optimize --year 2025 --leave 25 --country FR
  planner optimize --country DE --subdivision BY --closure 2025-12-24:2025-12-31 --imposed
  planner optimize --input plan.yaml --output plan.json
  planner batch plans/*.yaml --workers 4
  planner holidays --country GB --subdivision SCT --year 2026

SEE ALSO:
  - cmd/server/main.go: The HTTP server
  - factory/plan.go: Plan file format
*/
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/rest-planner/config"
	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/holidays"
	"github.com/warp/rest-planner/logging"
	"github.com/warp/rest-planner/store/sqlite"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	dbPath     string
	logLevel   string
	now        func() time.Time

	cfg      *config.Config
	logger   *zap.Logger
	store    *sqlite.Store // nil without --db
	calendar *holidays.Cache
	planner  *timeoff.Planner
	factory  *factory.PlanFactory
}

func newRootCmd(a *app) *cobra.Command {
	if a.now == nil {
		a.now = time.Now
	}

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Place paid leave to get the longest rest periods",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database with custom holidays and saved plans")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newOptimizeCmd(a),
		newBatchCmd(a),
		newHolidaysCmd(a),
		newRegionsCmd(a),
	)
	return root
}

// setup loads the configuration and builds the planner stack. Logs are
// written to the command's stderr unless the config names a log file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Logging.File != "" {
		a.logger, err = logging.New(cfg.Logging, a.logLevel)
	} else {
		console := cfg.Logging
		console.Format = "console"
		a.logger, err = logging.NewWithSink(console, a.logLevel, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
	}
	if err != nil {
		return err
	}

	opts := holidays.StackOptions{
		File:     cfg.Holidays.File,
		CacheTTL: cfg.Holidays.CacheTTL,
		Logger:   a.logger,
	}
	if a.dbPath != "" {
		if a.store, err = sqlite.New(a.dbPath); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		opts.Store = a.store
	}
	if a.calendar, err = holidays.NewStack(opts); err != nil {
		return err
	}
	a.planner = timeoff.NewPlanner(a.calendar, a.logger.Named("planner"))

	defaults, err := cfg.PlanDefaults(a.now())
	if err != nil {
		return err
	}
	a.factory = factory.NewPlanFactory(defaults)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
