package permission

import (
	"context"
	"errors"

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

type EdgeRepoPG struct {
	pool *pgxpool.Pool
}

func NewEdgeRepoPG(pool *pgxpool.Pool) *EdgeRepoPG {
	return &EdgeRepoPG{pool: pool}
}

func (r *EdgeRepoPG) conn(ctx context.Context) queryable {
	if tx := ledger.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *EdgeRepoPG) Insert(ctx context.Context, patient, doctor string) (*Edge, bool, error) {
	var e Edge
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO permission_edges (patient, doctor)
		 VALUES ($1, $2)
		 ON CONFLICT (patient, doctor) DO NOTHING
		 RETURNING patient, doctor, granted_at`,
		patient, doctor).Scan(&e.Patient, &e.Doctor, &e.GrantedAt)
	if err == nil {
		return &e, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ledger.ClassifyError(err)
	}

	// Conflict: the edge already exists, return the original.
	err = r.conn(ctx).QueryRow(ctx,
		`SELECT patient, doctor, granted_at FROM permission_edges
		 WHERE patient = $1 AND doctor = $2`,
		patient, doctor).Scan(&e.Patient, &e.Doctor, &e.GrantedAt)
	if err != nil {
		return nil, false, ledger.ClassifyError(err)
	}
	return &e, false, nil
}

func (r *EdgeRepoPG) Has(ctx context.Context, patient, doctor string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM permission_edges WHERE patient = $1 AND doctor = $2)`,
		patient, doctor).Scan(&exists)
	if err != nil {
		return false, ledger.ClassifyError(err)
	}
	return exists, nil
}

func (r *EdgeRepoPG) ListByPatient(ctx context.Context, patient string) ([]*Edge, error) {
	return r.list(ctx,
		`SELECT patient, doctor, granted_at FROM permission_edges
		 WHERE patient = $1 ORDER BY granted_at, doctor`, patient)
}

func (r *EdgeRepoPG) ListByDoctor(ctx context.Context, doctor string) ([]*Edge, error) {
	return r.list(ctx,
		`SELECT patient, doctor, granted_at FROM permission_edges
		 WHERE doctor = $1 ORDER BY granted_at, patient`, doctor)
}

func (r *EdgeRepoPG) list(ctx context.Context, query string, arg string) ([]*Edge, error) {
	rows, err := r.conn(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, ledger.ClassifyError(err)
	}
	defer rows.Close()

	var edges []*Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Patient, &e.Doctor, &e.GrantedAt); err != nil {
			return nil, ledger.ClassifyError(err)
		}
		edges = append(edges, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.ClassifyError(err)
	}
	return edges, nil
}
