package permission

import "context"

type EdgeRepository interface {
	// Insert creates the edge if absent. It returns the stored edge (the
	// original on conflict) and whether a new edge was created.
	Insert(ctx context.Context, patient, doctor string) (*Edge, bool, error)
	Has(ctx context.Context, patient, doctor string) (bool, error)
	ListByPatient(ctx context.Context, patient string) ([]*Edge, error)
	ListByDoctor(ctx context.Context, doctor string) ([]*Edge, error)
}
