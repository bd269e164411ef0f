package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

const (
	pqClassConnection     = pq.ErrorClass("08")
	pqAdminShutdown       = pq.ErrorCode("57P01")
	pqCrashShutdown       = pq.ErrorCode("57P02")
	pqCannotConnectNow    = pq.ErrorCode("57P03")
	pqForeignKeyViolation = pq.ErrorCode("23503")
)

// conn is the subset of *sqlx.Conn and *sqlx.DB the store runs statements on.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

func isNotFound(err error) bool {
	return crerr.Is(err, sql.ErrNoRows)
}

// classify marks connectivity loss and missing parent rows so callers can
// tell them apart from ordinary statement failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConnectionLost(err) {
		return crerr.Mark(err, usecase.ErrStoreUnavailable)
	}
	if isForeignKeyViolation(err) {
		return crerr.Mark(err, usecase.ErrMatchNotFound)
	}
	return err
}

func isConnectionLost(err error) bool {
	if crerr.Is(err, driver.ErrBadConn) || crerr.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if crerr.As(err, &pqErr) {
		if pqErr.Code.Class() == pqClassConnection {
			return true
		}
		switch pqErr.Code {
		case pqAdminShutdown, pqCrashShutdown, pqCannotConnectNow:
			return true
		}
		return false
	}

	var netErr net.Error
	return crerr.As(err, &netErr)
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return crerr.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

// wrapf wraps a classified error after classifying it.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, classify(err))...)
}
