package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyMarksConnectivityLoss(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
	}{
		{name: "bad conn", err: driver.ErrBadConn},
		{name: "conn done", err: fmt.Errorf("exec: %w", sql.ErrConnDone)},
		{name: "connection failure class", err: &pq.Error{Code: "08006", Message: "connection failure"}},
		{name: "admin shutdown", err: &pq.Error{Code: "57P01", Message: "terminating connection"}},
		{name: "network error", err: timeoutErr{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := classify(tc.err)
			if !crerr.Is(got, usecase.ErrStoreUnavailable) {
				t.Fatalf("expected store unavailable mark, got %v", got)
			}
			if crerr.Is(got, usecase.ErrMatchNotFound) {
				t.Fatalf("expected no match-not-found mark")
			}
		})
	}
}

func TestClassifyMarksForeignKeyViolation(t *testing.T) {
	t.Parallel()

	err := wrapf(&pq.Error{Code: "23503", Message: "violates foreign key constraint"}, "insert snapshot match=%d", 9)
	if !crerr.Is(err, usecase.ErrMatchNotFound) {
		t.Fatalf("expected match not found mark, got %v", err)
	}
	if crerr.Is(err, usecase.ErrStoreUnavailable) {
		t.Fatalf("expected no store unavailable mark")
	}
}

func TestClassifyLeavesOtherErrorsAlone(t *testing.T) {
	t.Parallel()

	err := classify(&pq.Error{Code: "42P01", Message: "relation does not exist"})
	if crerr.Is(err, usecase.ErrStoreUnavailable) || crerr.Is(err, usecase.ErrMatchNotFound) {
		t.Fatalf("expected unmarked error, got %v", err)
	}
	if classify(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	if isConnectionLost(context.Canceled) {
		t.Fatalf("expected context cancellation not to count as connectivity loss")
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(sql.ErrConnDone) {
		t.Fatalf("expected ErrConnDone not to be not found")
	}
}
