package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	qerrors "github.com/bfs/census-acs-mcp/internal/errors"
)

// Service is the query execution boundary for the analytical store. Every
// logical operation runs through it: the service applies the configured
// deadline, cancels the underlying statement when the deadline fires, and
// converts store failures into the stable error taxonomy. Rows are consumed
// inside the call so the deadline covers scanning, not just statement start.
type Service struct {
	db      *DB
	logger  *slog.Logger
	timeout time.Duration
}

// NewService creates a query execution service over db with the given timeout.
func NewService(db *DB, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

// Timeout returns the configured query deadline.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// Query executes query and passes every row to scan. The scan callback must
// call rows.Scan itself; returning an error aborts iteration.
func (s *Service) Query(ctx context.Context, operation, query string, args []interface{}, scan func(rows *sql.Rows) error) error {
	execID := uuid.NewString()
	start := time.Now()

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.conn.QueryContext(qctx, query, args...)
	if err != nil {
		return s.wrap(operation, execID, start, qctx, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return s.wrap(operation, execID, start, qctx, err)
		}
	}
	if err := rows.Err(); err != nil {
		return s.wrap(operation, execID, start, qctx, err)
	}

	s.logger.Debug("query executed",
		"operation", operation,
		"execId", execID,
		"durationMs", time.Since(start).Milliseconds(),
	)
	return nil
}

// QueryRow executes a query expected to return at most one row. found is
// false when no row matched; scanning errors surface as execution failures.
func (s *Service) QueryRow(ctx context.Context, operation, query string, args []interface{}, dest ...interface{}) (found bool, err error) {
	execID := uuid.NewString()
	start := time.Now()

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := s.db.conn.QueryRowContext(qctx, query, args...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, s.wrap(operation, execID, start, qctx, err)
	}

	s.logger.Debug("query executed",
		"operation", operation,
		"execId", execID,
		"durationMs", time.Since(start).Milliseconds(),
	)
	return true, nil
}

// Count executes a COUNT-style query and returns its single integer result.
func (s *Service) Count(ctx context.Context, operation, query string, args []interface{}) (int, error) {
	var n int
	if _, err := s.QueryRow(ctx, operation, query, args, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// wrap converts a store failure into the taxonomy and logs it once.
func (s *Service) wrap(operation, execID string, start time.Time, ctx context.Context, err error) error {
	elapsed := time.Since(start)

	var wrapped error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		wrapped = qerrors.NewTimeoutError(operation, err)
	} else {
		wrapped = qerrors.NewOperationError(operation, err)
	}

	s.logger.Error("query failed",
		"operation", operation,
		"execId", execID,
		"durationMs", elapsed.Milliseconds(),
		"error", err.Error(),
	)
	return wrapped
}
