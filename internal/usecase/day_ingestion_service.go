package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/domain/match"
	idgen "github.com/riskibarqy/matchday-ingest/internal/platform/id"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DayLayout         = "2006-01-02"
	DefaultEventDelay = 500 * time.Millisecond
)

type DayState string

const (
	DayStateStart             DayState = "START"
	DayStateListFetched       DayState = "LIST_FETCHED"
	DayStateProjectionRebuilt DayState = "PROJECTION_REBUILT"
	DayStateDone              DayState = "DONE"
	DayStateFailed            DayState = "FAILED"
)

type FailureReason string

const (
	FailureListUnavailable    FailureReason = "list_unavailable"
	FailureListMalformed      FailureReason = "list_malformed"
	FailureStoreUnavailable   FailureReason = "store_unavailable"
	FailureSessionUnavailable FailureReason = "session_unavailable"
	FailureCanceled           FailureReason = "canceled"
)

type EventOutcome string

const (
	EventSkipped EventOutcome = "skipped"
	EventNew     EventOutcome = "new"
	EventFailed  EventOutcome = "failed"
)

type EventResult struct {
	MatchID  int64        `json:"match_id"`
	Outcome  EventOutcome `json:"outcome"`
	Attempts int          `json:"attempts"`
	Message  string       `json:"message,omitempty"`
}

type DaySummary struct {
	Date              time.Time     `json:"date"`
	RunID             string        `json:"run_id"`
	State             DayState      `json:"state"`
	FailureReason     FailureReason `json:"failure_reason,omitempty"`
	Message           string        `json:"message,omitempty"`
	Listed            int           `json:"listed"`
	Rejected          int           `json:"rejected"`
	New               int           `json:"new"`
	Skipped           int           `json:"skipped"`
	Failed            int           `json:"failed"`
	ProjectionRebuilt bool          `json:"projection_rebuilt"`
	ProjectionRows    int           `json:"projection_rows"`
	ProjectionSkipped int           `json:"projection_skipped,omitempty"`
	Duration          time.Duration `json:"duration"`
	Events            []EventResult `json:"events"`
}

// Succeeded is true once the event list was fetched, whatever happened to
// individual events.
func (s DaySummary) Succeeded() bool {
	return s.State == DayStateDone
}

// ProgressObserver receives per-event progress of one date.
type ProgressObserver interface {
	DayStarted(date time.Time, events int)
	EventFinished(date time.Time, result EventResult)
	DayFinished(summary DaySummary)
}

type DayIngestionConfig struct {
	Retry      RetryPolicy
	EventDelay time.Duration
}

type DayIngestionService struct {
	sessions document.SessionFactory
	stores   StoreProvider
	cfg      DayIngestionConfig
	retrier  *Retrier
	ids      idgen.Generator
	logger   *logging.Logger
	progress ProgressObserver
	sleep    sleepFunc
	now      func() time.Time
}

func NewDayIngestionService(
	sessions document.SessionFactory,
	stores StoreProvider,
	cfg DayIngestionConfig,
	ids idgen.Generator,
	logger *logging.Logger,
) *DayIngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewRunIDGenerator("run")
	}
	cfg.Retry = cfg.Retry.normalize()
	if cfg.EventDelay < 0 {
		cfg.EventDelay = 0
	}

	return &DayIngestionService{
		sessions: sessions,
		stores:   stores,
		cfg:      cfg,
		retrier:  NewRetrier(cfg.Retry, logger),
		ids:      ids,
		logger:   logger,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

func (s *DayIngestionService) WithProgress(observer ProgressObserver) *DayIngestionService {
	s.progress = observer
	return s
}

// IngestDay processes one calendar date. The returned error is non-nil only
// when the date ends in FAILED.
func (s *DayIngestionService) IngestDay(ctx context.Context, date time.Time) (summary DaySummary, err error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	ctx, span := startUsecaseSpan(ctx, "usecase.DayIngestionService.IngestDay",
		attribute.String("ingest.date", date.Format(DayLayout)),
	)
	defer span.End()

	started := s.now()
	runID, idErr := s.ids.NewID()
	if idErr != nil {
		runID = "run-unknown"
	}
	logger := s.logger.With("date", date.Format(DayLayout), "run_id", runID)

	summary = DaySummary{Date: date, RunID: runID, State: DayStateStart}
	defer func() {
		summary.Duration = s.now().Sub(started)
		if s.progress != nil {
			s.progress.DayFinished(summary)
		}
	}()

	session, openErr := OpenSession(ctx, s.sessions, s.cfg.Retry.Cooldown, logger)
	if openErr != nil {
		return s.fail(ctx, logger, summary, FailureSessionUnavailable, openErr)
	}
	session.sleep = s.sleep
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.WarnContext(ctx, "close source session failed", "error", closeErr)
		}
	}()

	store, acquireErr := s.stores.Acquire(ctx)
	if acquireErr != nil {
		return s.fail(ctx, logger, summary, FailureStoreUnavailable, acquireErr)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.WarnContext(ctx, "release store connection failed", "error", closeErr)
		}
	}()

	listDoc, fetchErr := s.retrier.Do(ctx, "event_list", func(ctx context.Context) document.Result {
		return session.FetchEventList(ctx, date).Expect(document.EventListKey)
	}, session.Recreate)
	if fetchErr != nil {
		if ctx.Err() != nil {
			return s.fail(ctx, logger, summary, FailureCanceled, ctx.Err())
		}
		var exhausted *RetryExhaustedError
		if crerr.As(fetchErr, &exhausted) && exhausted.LastOutcome == document.OutcomeMalformed {
			return s.fail(ctx, logger, summary, FailureListMalformed, fetchErr)
		}
		return s.fail(ctx, logger, summary, FailureListUnavailable, fetchErr)
	}

	matches, rejected, parseErr := match.ParseEventList(listDoc)
	if parseErr != nil {
		return s.fail(ctx, logger, summary, FailureListMalformed, parseErr)
	}
	for _, rejectErr := range rejected {
		logger.WarnContext(ctx, "event rejected from list", "error", rejectErr)
	}
	summary.State = DayStateListFetched
	summary.Listed = len(matches)
	summary.Rejected = len(rejected)
	summary.Events = make([]EventResult, 0, len(matches))
	logger.InfoContext(ctx, "event list fetched", "events", len(matches), "rejected", len(rejected))

	upserted, upsertErr := store.UpsertMatches(ctx, matches)
	if upsertErr != nil {
		if crerr.Is(upsertErr, ErrStoreUnavailable) {
			return s.fail(ctx, logger, summary, FailureStoreUnavailable, upsertErr)
		}
		logger.WarnContext(ctx, "some match rows were not written", "failed", upserted.Failed, "error", upsertErr)
	}
	logger.DebugContext(ctx, "match rows upserted", "inserted", upserted.Inserted, "existing", upserted.Existing)

	if s.progress != nil {
		s.progress.DayStarted(date, len(matches))
	}

	for _, item := range matches {
		if ctx.Err() != nil {
			return s.fail(ctx, logger, summary, FailureCanceled, ctx.Err())
		}

		result, eventErr := s.ingestEvent(ctx, logger, session, store, item)
		summary.Events = append(summary.Events, result)
		switch result.Outcome {
		case EventSkipped:
			summary.Skipped++
		case EventNew:
			summary.New++
		default:
			summary.Failed++
		}
		if s.progress != nil {
			s.progress.EventFinished(date, result)
		}

		if eventErr != nil && crerr.Is(eventErr, ErrStoreUnavailable) {
			return s.fail(ctx, logger, summary, FailureStoreUnavailable, eventErr)
		}
		if result.Outcome != EventSkipped {
			if sleepErr := s.sleep(ctx, s.cfg.EventDelay); sleepErr != nil {
				return s.fail(ctx, logger, summary, FailureCanceled, sleepErr)
			}
		}
	}

	if summary.New+summary.Failed > 0 {
		report, rebuildErr := store.RebuildStatisticsProjection(ctx)
		switch {
		case rebuildErr == nil:
			summary.ProjectionRebuilt = true
			summary.ProjectionRows = report.Rows
			summary.ProjectionSkipped = len(report.Skipped)
			summary.State = DayStateProjectionRebuilt
			logRebuildReport(ctx, logger, report)
		case crerr.Is(rebuildErr, ErrStoreUnavailable):
			return s.fail(ctx, logger, summary, FailureStoreUnavailable, rebuildErr)
		default:
			logger.ErrorContext(ctx, "rebuild statistics projection failed", "error", rebuildErr)
		}
	}

	summary.State = DayStateDone
	logger.InfoContext(ctx, "day ingested",
		"new", summary.New,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"projection_rebuilt", summary.ProjectionRebuilt,
	)
	return summary, nil
}

func (s *DayIngestionService) ingestEvent(
	ctx context.Context,
	logger *logging.Logger,
	session *SessionHandle,
	store Store,
	item match.Match,
) (EventResult, error) {
	result := EventResult{MatchID: item.ID}
	logger = logger.With("match_id", item.ID)

	exists, err := store.MatchExists(ctx, item.ID)
	if err != nil {
		if crerr.Is(err, ErrStoreUnavailable) {
			result.Outcome = EventFailed
			result.Message = err.Error()
			return result, err
		}
		logger.WarnContext(ctx, "skip check failed, fetching details anyway", "error", err)
	}
	if exists {
		result.Outcome = EventSkipped
		return result, nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.Retry.MaxAttempts; attempt++ {
		result.Attempts = attempt
		lastErr = s.runDetailUnit(ctx, logger, session, store, item.ID)
		if lastErr == nil {
			break
		}
		if crerr.Is(lastErr, ErrStoreUnavailable) || crerr.Is(lastErr, ErrMatchNotFound) || ctx.Err() != nil {
			break
		}
		logger.WarnContext(ctx, "detail unit failed",
			"attempt", attempt,
			"max_attempts", s.cfg.Retry.MaxAttempts,
			"error", lastErr,
		)
		if attempt < s.cfg.Retry.MaxAttempts {
			if recreateErr := session.Recreate(ctx); recreateErr != nil {
				logger.WarnContext(ctx, "recreate session before unit retry failed", "error", recreateErr)
			}
		}
	}

	if lastErr == nil {
		if markErr := store.MarkDetailsCompleted(ctx, item.ID); markErr != nil {
			lastErr = fmt.Errorf("mark details completed: %w", markErr)
		}
	}
	if lastErr != nil {
		result.Outcome = EventFailed
		result.Message = lastErr.Error()
		logger.ErrorContext(ctx, "event failed", "attempts", result.Attempts, "error", lastErr)
		return result, lastErr
	}

	result.Outcome = EventNew
	return result, nil
}

// runDetailUnit fetches and persists graphics, statistics and incidents in that
// order. A panic inside the unit is reported as an error.
func (s *DayIngestionService) runDetailUnit(
	ctx context.Context,
	logger *logging.Logger,
	session *SessionHandle,
	store Store,
	matchID int64,
) error {
	var catcher panics.Catcher
	var unitErr error
	catcher.Try(func() {
		unitErr = s.fetchAndPersistDetails(ctx, logger, session, store, matchID)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return crerr.Wrap(recovered.AsError(), "detail unit panicked")
	}
	return unitErr
}

func (s *DayIngestionService) fetchAndPersistDetails(
	ctx context.Context,
	logger *logging.Logger,
	session *SessionHandle,
	store Store,
	matchID int64,
) error {
	for _, kind := range document.DetailKinds() {
		doc, err := s.retrier.Do(ctx, "match_"+string(kind), func(ctx context.Context) document.Result {
			return session.FetchMatchDocument(ctx, matchID, kind).Expect(kind.PayloadKey())
		}, session.Recreate)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", kind, err)
		}

		if err := persistDetail(ctx, store, matchID, kind, doc); err != nil {
			if crerr.Is(err, ErrStoreUnavailable) || crerr.Is(err, ErrMatchNotFound) {
				return fmt.Errorf("persist %s: %w", kind, err)
			}
			logger.ErrorContext(ctx, "persist detail document failed", "kind", kind, "error", err)
		}
	}
	return nil
}

func persistDetail(ctx context.Context, store Store, matchID int64, kind document.Kind, doc document.Document) error {
	switch kind {
	case document.KindGraphics:
		return store.SaveGraphics(ctx, matchID, doc)
	case document.KindStatistics:
		return store.SaveStatistics(ctx, matchID, doc)
	case document.KindIncidents:
		return store.SaveIncidents(ctx, matchID, doc)
	default:
		return fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, kind)
	}
}

func (s *DayIngestionService) fail(
	ctx context.Context,
	logger *logging.Logger,
	summary DaySummary,
	reason FailureReason,
	cause error,
) (DaySummary, error) {
	summary.State = DayStateFailed
	summary.FailureReason = reason
	if cause != nil {
		summary.Message = cause.Error()
	}
	logger.ErrorContext(ctx, "day failed", "reason", reason, "error", cause)
	return summary, fmt.Errorf("ingest %s failed (%s): %w", summary.Date.Format(DayLayout), reason, cause)
}
