package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medledger/medledger/internal/platform/ledger"
)

const (
	patientAddr = "0x1111111111111111111111111111111111111111"
	doctorAddr  = "0x2222222222222222222222222222222222222222"
	otherAddr   = "0x3333333333333333333333333333333333333333"
)

type mockProfileRepo struct {
	profiles map[string]*PatientProfile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*PatientProfile)}
}

func (m *mockProfileRepo) Upsert(ctx context.Context, p *PatientProfile) error {
	p.LastUpdated = time.Now().UTC()
	cp := *p
	m.profiles[p.Patient] = &cp
	return nil
}

func (m *mockProfileRepo) GetByPatient(ctx context.Context, patient string) (*PatientProfile, error) {
	p, ok := m.profiles[patient]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type stubGrants struct {
	granted map[string]bool
}

func (s *stubGrants) HasGrant(ctx context.Context, patient, doctor string) (bool, error) {
	return s.granted[patient+"|"+doctor], nil
}

type captureAppender struct {
	entries []string
}

func (a *captureAppender) Append(ctx context.Context, patient, doctor, details string) error {
	a.entries = append(a.entries, patient+"|"+doctor+"|"+details)
	return nil
}

func newTestService() (*Service, *mockProfileRepo, *captureAppender) {
	repo := newMockProfileRepo()
	grants := &stubGrants{granted: map[string]bool{patientAddr + "|" + doctorAddr: true}}
	audit := &captureAppender{}
	return NewService(repo, grants, audit, ledger.PassthroughRunner{}), repo, audit
}

func TestUpdateCreatesProfileAndAuditEntry(t *testing.T) {
	svc, _, audit := newTestService()

	in := &PatientProfile{
		Gender:            "female",
		DateOfBirth:       "1990-04-12",
		BloodType:         "O+",
		MedicalConditions: []string{"asthma"},
	}
	updated, err := svc.Update(context.Background(), patientAddr, patientAddr, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Patient != patientAddr {
		t.Fatalf("Patient = %s", updated.Patient)
	}
	if updated.LastUpdated.IsZero() {
		t.Fatal("LastUpdated not set")
	}
	if len(audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1 per mutation", len(audit.entries))
	}

	got, err := svc.Get(context.Background(), patientAddr, patientAddr)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.BloodType != "O+" || got.DateOfBirth != "1990-04-12" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestGrantedDoctorMayReadAndWrite(t *testing.T) {
	svc, _, audit := newTestService()

	if _, err := svc.Update(context.Background(), doctorAddr, patientAddr,
		&PatientProfile{Notes: "seen in clinic", Allergies: []string{"penicillin"}}); err != nil {
		t.Fatalf("doctor Update: %v", err)
	}
	got, err := svc.Get(context.Background(), doctorAddr, patientAddr)
	if err != nil {
		t.Fatalf("doctor Get: %v", err)
	}
	if len(got.Allergies) != 1 || got.Allergies[0] != "penicillin" {
		t.Fatalf("allergies = %v", got.Allergies)
	}
	// The entry names the writing doctor.
	if len(audit.entries) != 1 || audit.entries[0] != patientAddr+"|"+doctorAddr+"|profile updated" {
		t.Fatalf("audit entries = %v", audit.entries)
	}
}

func TestUngrantedDoctorDenied(t *testing.T) {
	svc, repo, audit := newTestService()

	_, err := svc.Update(context.Background(), otherAddr, patientAddr, &PatientProfile{Notes: "x"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Update: expected ErrPermissionDenied, got %v", err)
	}
	if len(repo.profiles) != 0 || len(audit.entries) != 0 {
		t.Fatal("denied update mutated state")
	}

	_, err = svc.Get(context.Background(), otherAddr, patientAddr)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Get: expected ErrPermissionDenied, got %v", err)
	}
}

func TestGetMissingProfile(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), patientAddr, patientAddr)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateNormalizesNilSlices(t *testing.T) {
	svc, _, _ := newTestService()

	updated, err := svc.Update(context.Background(), patientAddr, patientAddr, &PatientProfile{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MedicalConditions == nil || updated.Allergies == nil {
		t.Fatal("nil slices not normalized to empty")
	}
}
