package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-ingest/internal/app"
	"github.com/riskibarqy/matchday-ingest/internal/config"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// rootOptions carries persistent flags and the configuration loaded before
// any subcommand runs.
type rootOptions struct {
	dryRun     bool
	noProgress bool
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *logging.Logger
}

func getRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "matchday-ingest",
		Short: "matchday-ingest copies football match data into PostgreSQL",
		Long: `matchday-ingest fetches the scheduled events of one or more calendar dates
from the match data source and stores every match together with its
graphics, statistics and incidents documents.

Re-running a date is safe: matches whose details were already stored are
skipped, and nothing already stored is overwritten.

Configuration comes from environment variables:
  DB_URL                        PostgreSQL connection string
  SOURCE_BASE_URL               Match data API root
  SOURCE_TIMEOUT                Per-request timeout (default 15s)
  INGEST_MAX_RETRIES            Attempts per document (default 3)
  INGEST_RECREATE_COOLDOWN      Pause after a session is recreated (default 5s)
  INGEST_EVENT_DELAY            Pause after each processed event (default 500ms)
  INGEST_WORKERS                Dates processed in parallel by "range" (default 1)
  APP_LOG_LEVEL, APP_LOG_FORMAT Logging (debug/info/warn/error, json/console)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false,
		"fetch and parse everything but keep writes in memory")
	rootCmd.PersistentFlags().BoolVar(&opts.noProgress, "no-progress", false,
		"disable the per-date progress bar")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"override APP_LOG_LEVEL (debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "",
		"override APP_LOG_FORMAT (json/console)")

	rootCmd.AddCommand(getDayCmd(opts))
	rootCmd.AddCommand(getRangeCmd(opts))
	rootCmd.AddCommand(getRebuildStatisticsCmd(opts))
	rootCmd.AddCommand(getMigrateCmd(opts))

	return rootCmd
}

func (o *rootOptions) load() error {
	if level := strings.TrimSpace(o.logLevel); level != "" {
		if err := os.Setenv("APP_LOG_LEVEL", level); err != nil {
			return fmt.Errorf("apply --log-level: %w", err)
		}
	}
	if format := strings.TrimSpace(o.logFormat); format != "" {
		if err := os.Setenv("APP_LOG_FORMAT", format); err != nil {
			return fmt.Errorf("apply --log-format: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	o.cfg = cfg
	o.logger = logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(o.logger)
	return nil
}

// open wires the services for one command run. The caller owns the returned
// closer.
func (o *rootOptions) open(ctx context.Context, progress usecase.ProgressObserver) (*app.App, func(), error) {
	a, err := app.New(ctx, o.cfg, o.logger, app.Options{
		DryRun:   o.dryRun,
		Progress: progress,
	})
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			o.logger.Warn("shutdown incomplete", "error", err)
		}
		_ = o.logger.Sync()
	}
	return a, closeFn, nil
}

// progress returns a bar renderer unless disabled or running several dates
// at once.
func (o *rootOptions) progress(cmd *cobra.Command, workers int) usecase.ProgressObserver {
	if o.noProgress || workers > 1 {
		return nil
	}
	return newProgressBars(cmd.ErrOrStderr())
}
