package usecase

import (
	"context"

	"github.com/riskibarqy/matchday-ingest/internal/domain/match"
	"github.com/riskibarqy/matchday-ingest/internal/domain/matchdetail"
)

// Store is one store connection held for the duration of a date.
type Store interface {
	match.Repository
	matchdetail.Repository
	Close() error
}

// StoreProvider hands out a dedicated Store per date.
type StoreProvider interface {
	Acquire(ctx context.Context) (Store, error)
}
