package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
)

var errNoLiveSession = crerr.New("no live source session")

// SessionHandle owns the source session of one date and replaces it on demand.
type SessionHandle struct {
	factory  document.SessionFactory
	cooldown time.Duration
	sleep    sleepFunc
	logger   *logging.Logger

	current     document.Fetcher
	recreations int
}

func OpenSession(ctx context.Context, factory document.SessionFactory, cooldown time.Duration, logger *logging.Logger) (*SessionHandle, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: source session factory is not configured", ErrDependencyUnavailable)
	}
	if logger == nil {
		logger = logging.Default()
	}

	fetcher, err := factory.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open source session: %w", err)
	}

	return &SessionHandle{
		factory:  factory,
		cooldown: cooldown,
		sleep:    sleepContext,
		logger:   logger,
		current:  fetcher,
	}, nil
}

func (h *SessionHandle) FetchEventList(ctx context.Context, date time.Time) document.Result {
	if h.current == nil {
		return document.Transport(errNoLiveSession)
	}
	return h.current.FetchEventList(ctx, date)
}

func (h *SessionHandle) FetchMatchDocument(ctx context.Context, matchID int64, kind document.Kind) document.Result {
	if h.current == nil {
		return document.Transport(errNoLiveSession)
	}
	return h.current.FetchMatchDocument(ctx, matchID, kind)
}

// Recreate closes the current session, waits the cool-down and opens a new one.
// On failure the handle is left without a session and fetches report transport
// failures until the next successful Recreate.
func (h *SessionHandle) Recreate(ctx context.Context) error {
	h.closeCurrent()
	h.recreations++

	if err := h.sleep(ctx, h.cooldown); err != nil {
		return err
	}

	fetcher, err := h.factory.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("reopen source session: %w", err)
	}
	h.current = fetcher
	return nil
}

func (h *SessionHandle) Recreations() int {
	return h.recreations
}

func (h *SessionHandle) Close() error {
	if h == nil || h.current == nil {
		return nil
	}
	err := h.current.Close()
	h.current = nil
	return err
}

func (h *SessionHandle) closeCurrent() {
	if h.current == nil {
		return
	}
	if err := h.current.Close(); err != nil {
		h.logger.Warn("close source session failed", "error", err)
	}
	h.current = nil
}
