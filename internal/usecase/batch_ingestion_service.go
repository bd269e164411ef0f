package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
)

const (
	maxBatchWorkers = 32
	maxBatchDays    = 3660
)

var inputValidator = validator.New()

// DayIngester is the per-date unit the batch driver fans out.
type DayIngester interface {
	IngestDay(ctx context.Context, date time.Time) (DaySummary, error)
}

type BatchInput struct {
	From    time.Time `validate:"required"`
	To      time.Time `validate:"required,gtefield=From"`
	Workers int       `validate:"gte=0,lte=32"`
}

type BatchResult struct {
	DateCount      int           `json:"date_count"`
	SucceededDates int           `json:"succeeded_dates"`
	FailedDates    int           `json:"failed_dates"`
	NewEvents      int           `json:"new_events"`
	SkippedEvents  int           `json:"skipped_events"`
	FailedEvents   int           `json:"failed_events"`
	WorkerCount    int           `json:"worker_count"`
	Duration       time.Duration `json:"duration"`
	Days           []DaySummary  `json:"days"`
}

// AllListsFetched reports whether every date got past the list fetch.
func (r BatchResult) AllListsFetched() bool {
	return r.FailedDates == 0
}

type BatchIngestionService struct {
	days   DayIngester
	logger *logging.Logger
}

func NewBatchIngestionService(days DayIngester, logger *logging.Logger) *BatchIngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BatchIngestionService{days: days, logger: logger}
}

func (s *BatchIngestionService) Run(ctx context.Context, input BatchInput) (BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BatchIngestionService.Run")
	defer span.End()

	if s.days == nil {
		return BatchResult{}, fmt.Errorf("%w: day ingester is not configured", ErrDependencyUnavailable)
	}
	if err := inputValidator.StructCtx(ctx, input); err != nil {
		return BatchResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	dates, err := ExpandDates(input.From, input.To)
	if err != nil {
		return BatchResult{}, err
	}

	workerCount := normalizeBatchWorkerCount(input.Workers, len(dates))
	result := BatchResult{
		DateCount:   len(dates),
		WorkerCount: workerCount,
		Days:        make([]DaySummary, 0, len(dates)),
	}
	started := time.Now()

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	summaries := make(chan DaySummary, len(dates))
	var succeeded atomic.Int32
	var failed atomic.Int32

	var workers sync.WaitGroup
	for _, date := range dates {
		if ctx.Err() != nil {
			break
		}
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			summary, dayErr := s.days.IngestDay(ctx, date)
			if dayErr != nil || !summary.Succeeded() {
				failed.Add(1)
			} else {
				succeeded.Add(1)
			}
			summaries <- summary
		}); err != nil {
			workers.Done()
			workers.Wait()
			return BatchResult{}, fmt.Errorf("submit date to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(summaries)

	for summary := range summaries {
		result.Days = append(result.Days, summary)
		result.NewEvents += summary.New
		result.SkippedEvents += summary.Skipped
		result.FailedEvents += summary.Failed
	}
	sort.SliceStable(result.Days, func(i, j int) bool {
		return result.Days[i].Date.Before(result.Days[j].Date)
	})

	result.SucceededDates = int(succeeded.Load())
	result.FailedDates = int(failed.Load())
	result.Duration = time.Since(started)

	s.logger.InfoContext(ctx, "batch finished",
		"dates", result.DateCount,
		"succeeded_dates", result.SucceededDates,
		"failed_dates", result.FailedDates,
		"new_events", result.NewEvents,
		"skipped_events", result.SkippedEvents,
		"failed_events", result.FailedEvents,
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// ExpandDates lists every calendar day from..to inclusive, in UTC.
func ExpandDates(from, to time.Time) ([]time.Time, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", ErrInvalidInput, end.Format(DayLayout), start.Format(DayLayout))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxBatchDays {
		return nil, fmt.Errorf("%w: range spans %d days, max %d", ErrInvalidInput, days, maxBatchDays)
	}

	out := make([]time.Time, 0, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out, nil
}

func ParseDay(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DayLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, raw)
	}
	return parsed, nil
}

func normalizeBatchWorkerCount(requested, tasks int) int {
	workers := requested
	if workers <= 0 {
		workers = 1
	}
	if workers > maxBatchWorkers {
		workers = maxBatchWorkers
	}
	if tasks > 0 && workers > tasks {
		workers = tasks
	}
	return workers
}
