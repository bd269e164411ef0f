package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
)

const (
	DefaultMaxAttempts      = 3
	DefaultRecreateCooldown = 5 * time.Second
)

type RetryPolicy struct {
	// MaxAttempts bounds fetch attempts per call site.
	MaxAttempts int
	// Cooldown is observed after closing a session and before opening the next.
	Cooldown time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Cooldown:    DefaultRecreateCooldown,
	}
}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Cooldown < 0 {
		p.Cooldown = 0
	}
	return p
}

// RetryExhaustedError is returned once every attempt of one call site failed.
type RetryExhaustedError struct {
	Op          string
	Attempts    int
	LastOutcome document.Outcome
	Last        error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s: gave up after %d attempt(s), last outcome=%s: %v", e.Op, e.Attempts, e.LastOutcome, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

type (
	FetchFunc    func(ctx context.Context) document.Result
	RecreateFunc func(ctx context.Context) error
)

// Retrier runs one fetch at most MaxAttempts times, recreating the
// session between attempts but never after the last one.
type Retrier struct {
	policy RetryPolicy
	logger *logging.Logger
}

func NewRetrier(policy RetryPolicy, logger *logging.Logger) *Retrier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Retrier{policy: policy.normalize(), logger: logger}
}

func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

func (r *Retrier) Do(ctx context.Context, op string, fetch FetchFunc, recreate RecreateFunc) (document.Document, error) {
	var last document.Result
	attempts := 0

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return document.Document{}, err
		}

		attempts = attempt
		last = fetch(ctx)
		if last.Succeeded() {
			return last.Document, nil
		}

		switch last.Outcome {
		case document.OutcomeMalformed:
			r.logger.WarnContext(ctx, "source responded with a malformed document",
				"op", op,
				"attempt", attempt,
				"max_attempts", r.policy.MaxAttempts,
				"error", last.Err,
			)
		default:
			r.logger.WarnContext(ctx, "source fetch failed",
				"op", op,
				"attempt", attempt,
				"max_attempts", r.policy.MaxAttempts,
				"error_class", errorClass(last.Err),
				"error", last.Err,
			)
		}

		if attempt == r.policy.MaxAttempts || recreate == nil {
			continue
		}
		if err := recreate(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return document.Document{}, ctxErr
			}
			r.logger.WarnContext(ctx, "recreate source session failed", "op", op, "attempt", attempt, "error", err)
		}
	}

	return document.Document{}, &RetryExhaustedError{
		Op:          op,
		Attempts:    attempts,
		LastOutcome: last.Outcome,
		Last:        last.Err,
	}
}

func errorClass(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", crerr.UnwrapAll(err))
}
