package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchday-ingest/internal/domain/matchdetail"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
)

// StatisticsRebuildService regenerates the statistics projection on demand,
// outside of any day run.
type StatisticsRebuildService struct {
	stores StoreProvider
	logger *logging.Logger
}

func NewStatisticsRebuildService(stores StoreProvider, logger *logging.Logger) *StatisticsRebuildService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatisticsRebuildService{stores: stores, logger: logger}
}

func (s *StatisticsRebuildService) Rebuild(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatisticsRebuildService.Rebuild")
	defer span.End()

	if s.stores == nil {
		return 0, fmt.Errorf("%w: store provider is not configured", ErrDependencyUnavailable)
	}

	store, err := s.stores.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			s.logger.WarnContext(ctx, "release store connection failed", "error", closeErr)
		}
	}()

	report, err := store.RebuildStatisticsProjection(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuild statistics projection: %w", err)
	}

	logRebuildReport(ctx, s.logger, report)
	return report.Rows, nil
}

func logRebuildReport(ctx context.Context, logger *logging.Logger, report matchdetail.RebuildReport) {
	if len(report.Skipped) > 0 {
		logger.WarnContext(ctx, "statistics snapshots skipped by rebuild",
			"skipped", len(report.Skipped),
			"match_ids", report.Skipped,
		)
	}
	logger.InfoContext(ctx, "statistics projection rebuilt", "rows", report.Rows, "skipped", len(report.Skipped))
}
