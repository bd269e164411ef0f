package match

import "context"

// Repository persists Match rows and the per-match completion marker.
type Repository interface {
	UpsertMatches(ctx context.Context, items []Match) (UpsertResult, error)
	MatchExists(ctx context.Context, id int64) (bool, error)
	MarkDetailsCompleted(ctx context.Context, id int64) error
}
