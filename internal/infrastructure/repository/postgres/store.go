package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

const (
	tableMatches              = "matches"
	tableGraphicsSnapshots    = "match_graphics_snapshots"
	tableStatisticsSnapshots  = "match_statistics_snapshots"
	tableIncidentsSnapshots   = "match_incidents_snapshots"
	tableGraphicsProjection   = "match_graphics_projection"
	tableStatisticsProjection = "match_statistics_projection"
	tableIncidentsProjection  = "match_incidents_projection"
	defaultRebuildPageSize    = 200

	// statisticsRebuildLockKey is the pg_advisory_xact_lock key held while the
	// statistics projection is rebuilt.
	statisticsRebuildLockKey int64 = 0x6d647374
)

// Provider hands every date its own pooled connection.
type Provider struct {
	db *sqlx.DB
}

func NewProvider(db *sqlx.DB) *Provider {
	return &Provider{db: db}
}

func (p *Provider) Acquire(ctx context.Context) (usecase.Store, error) {
	c, err := p.db.Connx(ctx)
	if err != nil {
		return nil, wrapf(err, "acquire store connection")
	}
	return newStore(c, c.Close), nil
}

// Store runs every statement of one date on a single connection.
type Store struct {
	db       conn
	close    func() error
	pageSize int
}

// NewStore runs statements directly on the pool. Used by one-off commands.
func NewStore(db *sqlx.DB) *Store {
	return newStore(db, func() error { return nil })
}

func newStore(db conn, closeFn func() error) *Store {
	return &Store{db: db, close: closeFn, pageSize: defaultRebuildPageSize}
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	if err := s.close(); err != nil {
		return fmt.Errorf("release store connection: %w", err)
	}
	return nil
}
