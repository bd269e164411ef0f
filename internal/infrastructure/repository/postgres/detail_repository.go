package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/domain/matchdetail"
	qb "github.com/riskibarqy/matchday-ingest/internal/platform/querybuilder"
)

// SaveGraphics replaces the snapshot and the 90-minute projection row in one
// transaction.
func (s *Store) SaveGraphics(ctx context.Context, matchID int64, doc document.Document) error {
	if err := matchdetail.ValidatePayload(doc); err != nil {
		return fmt.Errorf("save graphics match=%d: %w", matchID, err)
	}
	row, err := matchdetail.BuildGraphicsRow(matchID, doc)
	if err != nil {
		return fmt.Errorf("save graphics match=%d: %w", matchID, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapf(err, "begin tx save graphics match=%d", matchID)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertSnapshot(ctx, tx, matchdetail.NewSnapshot(matchID, document.KindGraphics, doc)); err != nil {
		return err
	}

	cols, vals := graphicsColumns(row)
	query, args, err := qb.InsertInto(tableGraphicsProjection).
		Columns(cols...).
		Values(vals...).
		Suffix(qb.UpsertSuffix([]string{"match_id"}, cols)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert graphics projection query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return wrapf(err, "upsert graphics projection match=%d", matchID)
	}

	if err := tx.Commit(); err != nil {
		return wrapf(err, "commit save graphics tx match=%d", matchID)
	}
	return nil
}

// SaveStatistics stores the snapshot only; the projection is rebuilt per date.
// A snapshot the rebuild could not flatten is refused here.
func (s *Store) SaveStatistics(ctx context.Context, matchID int64, doc document.Document) error {
	if err := matchdetail.ValidatePayload(doc); err != nil {
		return fmt.Errorf("save statistics match=%d: %w", matchID, err)
	}
	if _, err := matchdetail.FlattenStatistics(matchID, doc); err != nil {
		return fmt.Errorf("save statistics match=%d: %w", matchID, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapf(err, "begin tx save statistics match=%d", matchID)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertSnapshot(ctx, tx, matchdetail.NewSnapshot(matchID, document.KindStatistics, doc)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapf(err, "commit save statistics tx match=%d", matchID)
	}
	return nil
}

// SaveIncidents replaces the snapshot and every projection row of the match.
func (s *Store) SaveIncidents(ctx context.Context, matchID int64, doc document.Document) error {
	if err := matchdetail.ValidatePayload(doc); err != nil {
		return fmt.Errorf("save incidents match=%d: %w", matchID, err)
	}
	rows, err := matchdetail.FlattenIncidents(matchID, doc)
	if err != nil {
		return fmt.Errorf("save incidents match=%d: %w", matchID, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapf(err, "begin tx save incidents match=%d", matchID)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertSnapshot(ctx, tx, matchdetail.NewSnapshot(matchID, document.KindIncidents, doc)); err != nil {
		return err
	}

	query, args, err := qb.DeleteFrom(tableIncidentsProjection).Where(qb.Eq("match_id", matchID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete incidents projection query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return wrapf(err, "delete incidents projection match=%d", matchID)
	}

	for _, row := range rows {
		query, args, err := qb.InsertModel(tableIncidentsProjection, newIncidentInsertModel(row), "")
		if err != nil {
			return fmt.Errorf("build insert incident query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return wrapf(err, "insert incident match=%d seq=%d", matchID, row.Sequence)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapf(err, "commit save incidents tx match=%d", matchID)
	}
	return nil
}

// RebuildStatisticsProjection recomputes the whole statistics projection from
// the snapshots, paging by match id. Rebuilds are serialized by a transaction
// scoped advisory lock. Snapshots that no longer decode are reported as
// skipped.
func (s *Store) RebuildStatisticsProjection(ctx context.Context) (matchdetail.RebuildReport, error) {
	var report matchdetail.RebuildReport

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return report, wrapf(err, "begin tx rebuild statistics projection")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", statisticsRebuildLockKey); err != nil {
		return report, wrapf(err, "lock statistics projection rebuild")
	}

	query, args, err := qb.DeleteFrom(tableStatisticsProjection).All().ToSQL()
	if err != nil {
		return report, fmt.Errorf("build clear statistics projection query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return report, wrapf(err, "clear statistics projection")
	}

	pageSize := s.pageSize
	if pageSize <= 0 {
		pageSize = defaultRebuildPageSize
	}

	var lastID int64
	for {
		query, args, err := qb.Select("match_id", "payload::text AS payload").
			From(tableStatisticsSnapshots).
			Where(qb.Gt("match_id", lastID)).
			OrderBy("match_id").
			Limit(pageSize).
			ToSQL()
		if err != nil {
			return report, fmt.Errorf("build select statistics snapshots query: %w", err)
		}

		var page []snapshotTableModel
		if err := tx.SelectContext(ctx, &page, query, args...); err != nil {
			return report, wrapf(err, "select statistics snapshots after=%d", lastID)
		}
		if len(page) == 0 {
			break
		}

		for _, snapshot := range page {
			lastID = snapshot.MatchID
			rows, err := matchdetail.FlattenStatistics(snapshot.MatchID, document.New([]byte(snapshot.Payload)))
			if err != nil {
				report.Skipped = append(report.Skipped, snapshot.MatchID)
				continue
			}
			for _, row := range rows {
				query, args, err := qb.InsertModel(tableStatisticsProjection, newStatisticsInsertModel(row), "")
				if err != nil {
					return report, fmt.Errorf("build insert statistics row query: %w", err)
				}
				if _, err := tx.ExecContext(ctx, query, args...); err != nil {
					return report, wrapf(err, "insert statistics row match=%d position=%d", row.MatchID, row.Position)
				}
				report.Rows++
			}
		}

		if len(page) < pageSize {
			break
		}
	}

	if err := tx.Commit(); err != nil {
		return matchdetail.RebuildReport{}, wrapf(err, "commit rebuild statistics projection tx")
	}
	return report, nil
}

func upsertSnapshot(ctx context.Context, tx *sqlx.Tx, snapshot matchdetail.Snapshot) error {
	table, ok := snapshotTables[snapshot.Kind]
	if !ok {
		return fmt.Errorf("unknown snapshot kind %q", snapshot.Kind)
	}

	model := newSnapshotInsertModel(snapshot)
	cols, _, err := qb.ModelColumns(model)
	if err != nil {
		return fmt.Errorf("resolve snapshot columns: %w", err)
	}
	query, args, err := qb.InsertModel(table, model, qb.UpsertSuffix([]string{"match_id"}, cols, "fetched_at = NOW()"))
	if err != nil {
		return fmt.Errorf("build upsert %s snapshot query: %w", snapshot.Kind, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return wrapf(err, "upsert %s snapshot match=%d", snapshot.Kind, snapshot.MatchID)
	}
	return nil
}
