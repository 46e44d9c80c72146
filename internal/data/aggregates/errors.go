package aggregates

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/user"
)

// Sentinels raised inside aggregate write closures. MapError turns them into coded errors.
var (
	ErrValidation  = errors.New("aggregate validation")
	ErrInvariant   = errors.New("aggregate invariant violation")
	ErrConflict    = errors.New("aggregate conflict")
	ErrRetryable   = errors.New("aggregate retryable")
	ErrUnavailable = errors.New("aggregate store unavailable")
)

func tag(sentinel error, msg string) error {
	return errors.Join(sentinel, errors.New(strings.TrimSpace(msg)))
}

func ValidationError(msg string) error { return tag(ErrValidation, msg) }
func InvariantError(msg string) error  { return tag(ErrInvariant, msg) }
func ConflictError(msg string) error   { return tag(ErrConflict, msg) }
func RetryableError(msg string) error  { return tag(ErrRetryable, msg) }

var sentinelCodes = []struct {
	err  error
	code domainagg.ErrorCode
}{
	{ErrValidation, domainagg.CodeValidation},
	{user.ErrInvalidMutation, domainagg.CodeValidation},
	{ErrInvariant, domainagg.CodeInvariantViolation},
	{ErrConflict, domainagg.CodeConflict},
	{ErrRetryable, domainagg.CodeRetryable},
	{ErrUnavailable, domainagg.CodeUnavailable},
	{gorm.ErrRecordNotFound, domainagg.CodeNotFound},
	{context.Canceled, domainagg.CodeCanceled},
	{context.DeadlineExceeded, domainagg.CodeUnavailable},
	{driver.ErrBadConn, domainagg.CodeUnavailable},
}

// Postgres SQLSTATE classes that callers can act on.
var pgStateCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,           // unique_violation
	"23503": domainagg.CodePreconditionFailed, // foreign_key_violation
	"40001": domainagg.CodeConflict,           // serialization_failure
	"40P01": domainagg.CodeConflict,           // deadlock_detected
	"55P03": domainagg.CodeRetryable,          // lock_not_available
	"57P01": domainagg.CodeUnavailable,        // admin_shutdown
	"57P03": domainagg.CodeUnavailable,        // cannot_connect_now
	"53300": domainagg.CodeUnavailable,        // too_many_connections
}

// Last-resort substring hints for drivers that only surface text.
var messageHints = []struct {
	code    domainagg.ErrorCode
	needles []string
}{
	{domainagg.CodeConflict, []string{"duplicate key", "already exists", "unique constraint failed", "deadlock", "serialization", "database is locked"}},
	{domainagg.CodeUnavailable, []string{"connection refused", "broken pipe", "no such host", "database is closed", "timeout"}},
	{domainagg.CodeRetryable, []string{"temporar"}},
}

// MapError attaches an aggregate error code to err. Errors that already carry a
// code pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if domainagg.CodeOf(err) != "" {
		return err
	}
	return domainagg.Wrap(classify(err), op, err)
}

func classify(err error) domainagg.ErrorCode {
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, ok := pgStateCodes[strings.TrimSpace(pgErr.Code)]; ok {
			return code
		}
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return domainagg.CodeUnavailable
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if code, ok := classifySQLite(liteErr); ok {
			return code
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domainagg.CodeUnavailable
	}

	msg := strings.ToLower(err.Error())
	for _, h := range messageHints {
		for _, needle := range h.needles {
			if strings.Contains(msg, needle) {
				return h.code
			}
		}
	}
	return domainagg.CodeInternal
}

// classifySQLite maps lock contention to conflict so that the optimistic retry
// loop treats a busy sqlite file like a lost version race.
func classifySQLite(e sqlite3.Error) (domainagg.ErrorCode, bool) {
	switch {
	case e.Code == sqlite3.ErrBusy, e.Code == sqlite3.ErrLocked:
		return domainagg.CodeConflict, true
	case e.ExtendedCode == sqlite3.ErrConstraintUnique, e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
		return domainagg.CodeConflict, true
	case e.Code == sqlite3.ErrCantOpen, e.Code == sqlite3.ErrIoErr:
		return domainagg.CodeUnavailable, true
	}
	return "", false
}
