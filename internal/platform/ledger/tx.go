package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "ledger_tx"

// TxFromContext retrieves the active transaction from context, if any.
// Repositories check this first so that a multi-write operation (for
// example a record insert plus its audit entry) lands in one atomic unit.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// WithTx runs fn inside a single transaction. The transaction is placed in
// the context passed to fn; either every write in fn commits or none does.
// A commit interrupted by context cancellation is reported as
// ErrOutcomeUnknown — the mutation may still have applied.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return ClassifyError(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyCommit(ctx, err)
	}
	return nil
}

// Runner submits closures as single atomic ledger mutations. Services hold
// a Runner instead of the pool so that tests can swap in a passthrough.
type Runner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxRunner is the pool-backed Runner used in production wiring.
type TxRunner struct {
	Pool *pgxpool.Pool
}

func (r TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, r.Pool, fn)
}

// PassthroughRunner runs fn directly with no transaction. Used by tests
// backed by in-memory repositories.
type PassthroughRunner struct{}

func (PassthroughRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
