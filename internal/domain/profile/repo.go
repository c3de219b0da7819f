package profile

import "context"

type ProfileRepository interface {
	// Upsert writes the profile, creating the row on first write, and
	// refreshes last_updated.
	Upsert(ctx context.Context, p *PatientProfile) error
	GetByPatient(ctx context.Context, patient string) (*PatientProfile, error)
}
