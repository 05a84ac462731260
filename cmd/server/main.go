/*
main.go - HTTP server entry point

PURPOSE:
  Starts the rest planner API. Handles configuration, dependency
  injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, environment, flags)
  2. Build the logger
  3. Open the SQLite store
  4. Build the holiday provider stack and the planner
  5. Start the background job runner
  6. Configure the router and serve

COMMAND-LINE FLAGS:
  --config     Config file (default: config.yaml in the usual places)
  --port       HTTP server port, overrides server.port
  --db         SQLite database path, overrides database.path
               Use ":memory:" for an in-memory database
  --log-level  Overrides logging.level

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Cancel running jobs
  4. Close database connection

EXAMPLES:
  ./server --db=./data/planner.db
  ./server --db=":memory:" --port=3000
  RESTPLANNER_PLANNER_COUNTRY_CODE=DE ./server

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Every setting
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/rest-planner/api"
	"github.com/warp/rest-planner/config"
	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/holidays"
	"github.com/warp/rest-planner/logging"
	"github.com/warp/rest-planner/store/sqlite"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		port       int
		dbPath     string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Rest planner HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			logger, err := logging.New(cfg.Logging, logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	cmd.Flags().StringVar(&dbPath, "db", "planner.db", "SQLite database path")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	calendar, err := holidays.NewStack(holidays.StackOptions{
		File:     cfg.Holidays.File,
		Store:    store,
		CacheTTL: cfg.Holidays.CacheTTL,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	planner := timeoff.NewPlanner(calendar, logger.Named("planner"))

	defaults, err := cfg.PlanDefaults(time.Now())
	if err != nil {
		return err
	}
	plans := factory.NewPlanFactory(defaults)

	var jobs *api.JobRunner
	if cfg.Jobs.Enabled {
		jobs = api.NewJobRunner(planner, store, plans, logger, api.JobRunnerConfig{
			Workers:         cfg.Jobs.Workers,
			PlanWorkers:     cfg.Jobs.PlanWorkers,
			QueueSize:       cfg.Jobs.QueueSize,
			ChunkSize:       cfg.Jobs.ChunkSize,
			Retention:       cfg.Jobs.Retention,
			CleanupInterval: cfg.Jobs.CleanupInterval,
		})
		jobs.Start()
		defer jobs.Stop()
	}

	handler := api.NewHandler(api.Dependencies{
		Planner:  planner,
		Plans:    store,
		Holidays: store,
		Calendar: calendar,
		Factory:  plans,
		Jobs:     jobs,
		Logger:   logger,
	})
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("database", cfg.Database.Path),
			zap.String("default_country", defaults.CountryCode),
			zap.Int("default_year", defaults.Year))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
