package ledger

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// A failed submission has one of two meanings for the caller, and they must
// not be conflated: either the mutation definitely did not apply (safe to
// retry anything), or the outcome is unknown (only idempotent operations
// are safe to retry).
var (
	// ErrUnavailable means the collaborator could not be reached or
	// rejected the submission before applying it. The mutation did not
	// happen.
	ErrUnavailable = errors.New("ledger unavailable: mutation not applied")

	// ErrOutcomeUnknown means contact was lost after submission, typically
	// a timeout or cancellation mid-commit. The mutation may or may not
	// have applied; callers must poll before retrying non-idempotent
	// operations.
	ErrOutcomeUnknown = errors.New("ledger outcome unknown: mutation may have applied")
)

// ClassifyError maps a failure that occurred before or during submission to
// the taxonomy above. Constraint violations and other SQL-level rejections
// are returned unwrapped — the statement executed and was refused, so the
// domain layer translates them itself.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// The server executed and rejected the statement; nothing applied.
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(ErrOutcomeUnknown, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ErrOutcomeUnknown, err)
	}

	return errors.Join(ErrUnavailable, err)
}

// classifyCommit classifies a commit failure. By commit time the statements
// have been accepted, so any interruption leaves the outcome ambiguous
// unless the server itself rolled the transaction back.
func classifyCommit(ctx context.Context, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Server-side rollback (serialization failure etc.): not applied.
		return errors.Join(ErrUnavailable, err)
	}
	return errors.Join(ErrOutcomeUnknown, err)
}

// IsConstraintViolation reports whether err is a unique or foreign-key
// violation with the given constraint name. Repositories use this to turn
// pg rejections into domain errors (duplicate identity, unknown user).
func IsConstraintViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" && pgErr.Code != "23503" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
