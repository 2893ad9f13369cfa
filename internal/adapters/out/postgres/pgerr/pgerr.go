// Package pgerr maps PostgreSQL driver errors onto the error kinds the
// transaction coordinator understands. Lock conflicts, serialization
// failures, unique violations on concurrent inserts and dropped connections
// become *errs.TransientError so the whole unit is retried against fresh data.
package pgerr

import (
	"errors"
	"net"
	"strings"

	"parking/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes that are safe to retry.
const (
	UniqueViolation      = "23505"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"

	connectionExceptionClass = "08"
)

// Code extracts the SQLSTATE from err. Both the pgx driver used by GORM and
// lib/pq are recognized. Returns "" when err carries no server error.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsTransient reports whether retrying the transaction may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch code := Code(err); code {
	case UniqueViolation, SerializationFailure, DeadlockDetected, LockNotAvailable:
		return true
	default:
		if strings.HasPrefix(code, connectionExceptionClass) {
			return true
		}
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Translate wraps retryable errors into *errs.TransientError and returns
// every other error unchanged.
func Translate(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return errs.NewTransientErrorWithCause(operation, err)
	}
	return err
}
