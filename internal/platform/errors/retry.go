package errors

// Transport and Postgres helpers for mapping driver and HTTP failures to ErrorCode and retry semantics

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes worth a retry
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrCannotConnectNow     = "57P03"
	pgErrAdminShutdown        = "57P01"
)

// FromPostgres wraps a pg error as ErrorCodeDB, or Unavailable when the server is not accepting work
// If err is nil, returns nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCannotConnectNow, pgErrAdminShutdown:
			return Wrap(err, ErrorCodeUnavailable, msg)
		}
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// StatusCode maps an upstream HTTP status to the closest ErrorCode for a failed call
// fallback is used for anything that is not auth, throttling or a server outage
func StatusCode(status int, fallback ErrorCode) ErrorCode {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorCodeUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return ErrorCodeUnavailable
	default:
		return fallback
	}
}

// RetryableStatus reports whether an upstream status is worth another attempt
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Retryable reports whether err represents a transient condition worth retrying
// caller cancellation is never retryable; per-call deadlines are
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) {
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}

	root := Root(err)

	var nerr net.Error
	if stderrs.As(root, &nerr) && nerr.Timeout() {
		return true
	}

	var pgErr *pgconn.PgError
	if stderrs.As(root, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable, pgErrCannotConnectNow:
			return true
		default:
			return false
		}
	}

	s := strings.ToLower(root.Error())
	switch {
	case strings.Contains(s, "connection reset by peer"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "connection refused"):
		return true
	default:
		return false
	}
}
