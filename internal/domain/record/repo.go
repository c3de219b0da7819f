package record

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Insert(ctx context.Context, r *FileRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*FileRecord, error)
	// ListByPatient returns the patient's records in insertion order,
	// optionally filtered to one authoring doctor (empty string = all).
	ListByPatient(ctx context.Context, patient, doctor string) ([]*FileRecord, error)
}
