package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

type RecordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepoPG(pool *pgxpool.Pool) *RecordRepoPG {
	return &RecordRepoPG{pool: pool}
}

func (r *RecordRepoPG) conn(ctx context.Context) queryable {
	if tx := ledger.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *RecordRepoPG) Insert(ctx context.Context, rec *FileRecord) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO file_records (id, patient, doctor, file_name, content_ref)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING uploaded_at`,
		rec.ID, rec.Patient, rec.Doctor, rec.FileName, rec.ContentRef).Scan(&rec.UploadedAt)
	if err != nil {
		return ledger.ClassifyError(err)
	}
	return nil
}

func (r *RecordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*FileRecord, error) {
	var rec FileRecord
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, patient, doctor, file_name, content_ref, uploaded_at
		 FROM file_records WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Patient, &rec.Doctor, &rec.FileName, &rec.ContentRef, &rec.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ledger.ClassifyError(err)
	}
	return &rec, nil
}

func (r *RecordRepoPG) ListByPatient(ctx context.Context, patient, doctor string) ([]*FileRecord, error) {
	query := `SELECT id, patient, doctor, file_name, content_ref, uploaded_at
	          FROM file_records WHERE patient = $1`
	args := []interface{}{patient}
	if doctor != "" {
		query += ` AND doctor = $2`
		args = append(args, doctor)
	}
	query += ` ORDER BY uploaded_at, id`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, ledger.ClassifyError(err)
	}
	defer rows.Close()

	var records []*FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.ID, &rec.Patient, &rec.Doctor, &rec.FileName, &rec.ContentRef, &rec.UploadedAt); err != nil {
			return nil, ledger.ClassifyError(err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.ClassifyError(err)
	}
	return records, nil
}
