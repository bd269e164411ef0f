package matchdetail

import (
	"context"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

// Repository stores detail snapshots and keeps their projections in step.
type Repository interface {
	SaveGraphics(ctx context.Context, matchID int64, doc document.Document) error
	SaveStatistics(ctx context.Context, matchID int64, doc document.Document) error
	SaveIncidents(ctx context.Context, matchID int64, doc document.Document) error
	RebuildStatisticsProjection(ctx context.Context) (RebuildReport, error)
}

// RebuildReport describes one statistics projection rebuild. Skipped holds
// the match ids whose snapshot no longer decodes.
type RebuildReport struct {
	Rows    int
	Skipped []int64
}
