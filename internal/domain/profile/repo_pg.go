package profile

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

type ProfileRepoPG struct {
	pool *pgxpool.Pool
}

func NewProfileRepoPG(pool *pgxpool.Pool) *ProfileRepoPG {
	return &ProfileRepoPG{pool: pool}
}

func (r *ProfileRepoPG) conn(ctx context.Context) queryable {
	if tx := ledger.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *ProfileRepoPG) Upsert(ctx context.Context, p *PatientProfile) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO patient_profiles
		   (patient, gender, date_of_birth, blood_type, phone, address, notes,
		    medical_conditions, allergies, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		 ON CONFLICT (patient) DO UPDATE SET
		   gender = EXCLUDED.gender,
		   date_of_birth = EXCLUDED.date_of_birth,
		   blood_type = EXCLUDED.blood_type,
		   phone = EXCLUDED.phone,
		   address = EXCLUDED.address,
		   notes = EXCLUDED.notes,
		   medical_conditions = EXCLUDED.medical_conditions,
		   allergies = EXCLUDED.allergies,
		   last_updated = now()
		 RETURNING last_updated`,
		p.Patient, p.Gender, p.DateOfBirth, p.BloodType, p.Phone, p.Address,
		p.Notes, p.MedicalConditions, p.Allergies).Scan(&p.LastUpdated)
	if err != nil {
		return ledger.ClassifyError(err)
	}
	return nil
}

func (r *ProfileRepoPG) GetByPatient(ctx context.Context, patient string) (*PatientProfile, error) {
	var p PatientProfile
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT patient, gender, date_of_birth, blood_type, phone, address,
		        notes, medical_conditions, allergies, last_updated
		 FROM patient_profiles WHERE patient = $1`, patient).
		Scan(&p.Patient, &p.Gender, &p.DateOfBirth, &p.BloodType, &p.Phone,
			&p.Address, &p.Notes, &p.MedicalConditions, &p.Allergies, &p.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ledger.ClassifyError(err)
	}
	return &p, nil
}
