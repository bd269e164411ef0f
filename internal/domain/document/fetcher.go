package document

import (
	"context"
	"time"
)

// Fetcher retrieves documents through one live source session.
type Fetcher interface {
	FetchEventList(ctx context.Context, date time.Time) Result
	FetchMatchDocument(ctx context.Context, matchID int64, kind Kind) Result
	Close() error
}

// SessionFactory opens fresh source sessions.
type SessionFactory interface {
	NewSession(ctx context.Context) (Fetcher, error)
}
