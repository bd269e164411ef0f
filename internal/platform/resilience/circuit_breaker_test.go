package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold int, timeout time.Duration, probes int, now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: threshold,
		OpenTimeout:      timeout,
		HalfOpenMaxReq:   probes,
	})
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	now := time.Date(2024, 9, 22, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(2, 5*time.Second, 1, &now)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2024, 9, 22, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(1, time.Second, 1, &now)

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after failed probe, got %s", state)
	}
}

func TestCircuitBreaker_ExecuteCountsOnlyClassifiedFailures(t *testing.T) {
	now := time.Date(2024, 9, 22, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(2, time.Minute, 1, &now)

	transient := errors.New("connection reset")
	notFound := errors.New("404")
	isTransient := func(err error) bool { return errors.Is(err, transient) }

	for i := 0; i < 3; i++ {
		if err := b.Execute(func() error { return notFound }, isTransient); !errors.Is(err, notFound) {
			t.Fatalf("expected passthrough error, got %v", err)
		}
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("unclassified errors must not trip the breaker, got %s", state)
	}

	_ = b.Execute(func() error { return transient }, isTransient)
	_ = b.Execute(func() error { return transient }, isTransient)
	if err := b.Execute(func() error { return nil }, isTransient); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestCircuitBreaker_StateChangeHook(t *testing.T) {
	now := time.Date(2024, 9, 22, 12, 0, 0, 0, time.UTC)
	var transitions []string
	b := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Second,
		HalfOpenMaxReq:   1,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, string(from)+"->"+string(to))
		},
	})
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	_ = b.Allow()
	b.RecordSuccess()

	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("unexpected transitions: %v", transitions)
		}
	}
}

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{})
	if cfg.FailureThreshold != 5 || cfg.OpenTimeout != 30*time.Second || cfg.HalfOpenMaxReq != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
