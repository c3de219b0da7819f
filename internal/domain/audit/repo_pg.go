package audit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medledger/medledger/internal/platform/ledger"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type EntryRepoPG struct {
	pool *pgxpool.Pool
}

func NewEntryRepoPG(pool *pgxpool.Pool) *EntryRepoPG {
	return &EntryRepoPG{pool: pool}
}

func (r *EntryRepoPG) conn(ctx context.Context) queryable {
	if tx := ledger.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *EntryRepoPG) Insert(ctx context.Context, e *Entry) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO audit_entries (id, patient, doctor, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING recorded_at`,
		e.ID, e.Patient, e.Doctor, e.Details).Scan(&e.RecordedAt)
	if err != nil {
		return ledger.ClassifyError(err)
	}
	return nil
}

func (r *EntryRepoPG) ListByPair(ctx context.Context, patient, doctor string) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, patient, doctor, recorded_at, details FROM audit_entries
		 WHERE patient = $1 AND doctor = $2
		 ORDER BY recorded_at, id`,
		patient, doctor)
	if err != nil {
		return nil, ledger.ClassifyError(err)
	}
	return scanEntries(rows)
}

func (r *EntryRepoPG) ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_entries`).Scan(&total); err != nil {
		return nil, 0, ledger.ClassifyError(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, patient, doctor, recorded_at, details FROM audit_entries
		 ORDER BY recorded_at, id
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, ledger.ClassifyError(err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func scanEntries(rows pgx.Rows) ([]*Entry, error) {
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Patient, &e.Doctor, &e.RecordedAt, &e.Details); err != nil {
			return nil, ledger.ClassifyError(err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.ClassifyError(err)
	}
	return entries, nil
}
