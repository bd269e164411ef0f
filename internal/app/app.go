package app

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-ingest/external/sofascore"
	"github.com/riskibarqy/matchday-ingest/internal/config"
	"github.com/riskibarqy/matchday-ingest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday-ingest/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchday-ingest/internal/observability"
	idgen "github.com/riskibarqy/matchday-ingest/internal/platform/id"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
	"github.com/riskibarqy/matchday-ingest/internal/platform/resilience"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

type Options struct {
	// DryRun keeps every write in process memory and never opens the database.
	DryRun bool
	// Progress receives per-event updates of each date; nil disables it.
	Progress usecase.ProgressObserver
}

// App holds the wired services of one CLI invocation.
type App struct {
	Days    *usecase.DayIngestionService
	Batch   *usecase.BatchIngestionService
	Rebuild *usecase.StatisticsRebuildService

	cfg      config.Config
	logger   *logging.Logger
	db       *sqlx.DB
	shutdown []func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{cfg: cfg, logger: logger}

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	a.shutdown = append(a.shutdown, shutdownUptrace)

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	a.shutdown = append(a.shutdown, func(context.Context) error { return stopPyroscope() })

	var stores usecase.StoreProvider
	if opts.DryRun {
		logger.Warn("dry run: writes are kept in memory and discarded on exit")
		stores = memory.NewStore()
	} else {
		db, err := openDB(ctx, cfg)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.db = db
		stores = postgres.NewProvider(db)
		logger.Info("database connected",
			"db_name", dbNameFromURL(cfg.DBURL),
			"db_url", redactDBURL(cfg.DBURL),
			"max_open_conns", cfg.DBMaxOpenConns,
		)
	}

	sessions := sofascore.NewSessionFactory(sourceConfig(cfg), logger.Named("sofascore"))

	a.Days = usecase.NewDayIngestionService(
		sessions,
		stores,
		usecase.DayIngestionConfig{
			Retry: usecase.RetryPolicy{
				MaxAttempts: cfg.IngestMaxRetries,
				Cooldown:    cfg.IngestRecreateCooldown,
			},
			EventDelay: cfg.IngestEventDelay,
		},
		idgen.NewRunIDGenerator("run"),
		logger.Named("day"),
	)
	if opts.Progress != nil {
		a.Days.WithProgress(opts.Progress)
	}
	a.Batch = usecase.NewBatchIngestionService(a.Days, logger.Named("batch"))
	a.Rebuild = usecase.NewStatisticsRebuildService(stores, logger.Named("rebuild"))

	return a, nil
}

func (a *App) Config() config.Config {
	return a.cfg
}

// Close releases the database pool and flushes telemetry, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = crerr.CombineErrors(errs, fmt.Errorf("close database: %w", err))
		}
		a.db = nil
	}
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil {
			errs = crerr.CombineErrors(errs, err)
		}
	}
	a.shutdown = nil
	return errs
}

func sourceConfig(cfg config.Config) sofascore.Config {
	return sofascore.Config{
		BaseURL:      cfg.SourceBaseURL,
		Sport:        cfg.SourceSport,
		Timeout:      cfg.SourceTimeout,
		UserAgent:    cfg.SourceUserAgent,
		WarmupURL:    cfg.SourceWarmupURL,
		MaxBodyBytes: int64(cfg.SourceMaxBodyBytes),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SourceCircuitEnabled,
			FailureThreshold: cfg.SourceCircuitFailureCount,
			OpenTimeout:      cfg.SourceCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SourceCircuitHalfOpenMaxReq,
		},
	}
}
