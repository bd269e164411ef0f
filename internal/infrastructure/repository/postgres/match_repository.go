package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-ingest/internal/domain/match"
	qb "github.com/riskibarqy/matchday-ingest/internal/platform/querybuilder"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

// UpsertMatches inserts each listed event on its own. Rows already present are
// left untouched and a failing row never blocks the rest.
func (s *Store) UpsertMatches(ctx context.Context, items []match.Match) (match.UpsertResult, error) {
	var (
		result match.UpsertResult
		errs   error
	)

	for _, item := range items {
		query, args, err := qb.InsertModel(tableMatches, newMatchInsertModel(item), "ON CONFLICT (id) DO NOTHING")
		if err != nil {
			return result, fmt.Errorf("build insert match query: %w", err)
		}

		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			wrapped := wrapf(err, "insert match id=%d", item.ID)
			if crerr.Is(wrapped, usecase.ErrStoreUnavailable) {
				result.Failed += len(items) - result.Inserted - result.Existing
				return result, crerr.CombineErrors(errs, wrapped)
			}
			result.Failed++
			errs = crerr.CombineErrors(errs, wrapped)
			continue
		}

		affected, err := res.RowsAffected()
		if err != nil {
			result.Failed++
			errs = crerr.CombineErrors(errs, fmt.Errorf("rows affected insert match id=%d: %w", item.ID, err))
			continue
		}
		if affected == 0 {
			result.Existing++
			continue
		}
		result.Inserted++
	}

	return result, errs
}

// MatchExists reports whether the match row exists and its details completed.
func (s *Store) MatchExists(ctx context.Context, id int64) (bool, error) {
	query, args, err := qb.Select("1").From(tableMatches).
		Where(
			qb.Eq("id", id),
			qb.IsNotNull("details_completed_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build select match exists query: %w", err)
	}

	var found int
	if err := s.db.GetContext(ctx, &found, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, wrapf(err, "select match exists id=%d", id)
	}
	return true, nil
}

func (s *Store) MarkDetailsCompleted(ctx context.Context, id int64) error {
	query, args, err := qb.Update(tableMatches).
		SetExpr("details_completed_at", "COALESCE(details_completed_at, NOW())").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark details completed query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapf(err, "mark details completed id=%d", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected mark details completed id=%d: %w", id, err)
	}
	if affected == 0 {
		return crerr.Mark(fmt.Errorf("mark details completed id=%d: no match row", id), usecase.ErrMatchNotFound)
	}
	return nil
}
