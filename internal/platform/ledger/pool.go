// Package ledger is the boundary to the system's ledger collaborator: the
// store that applies every mutation atomically and in a single global
// order. In this deployment the collaborator is PostgreSQL; each mutating
// operation is submitted as one transaction, and the database serializes
// concurrent submissions. Nothing above this package depends on pg wire
// details — repositories speak through the pool/tx helpers here and report
// failures through the outcome classification in outcome.go.
package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
