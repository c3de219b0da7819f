package permission

import (
	"context"
	"fmt"

	"github.com/medledger/medledger/internal/platform/ledger"
	"github.com/medledger/medledger/pkg/ethaddr"
)

// RoleLookup resolves the registered role of an address. Satisfied by
// identity.Service.
type RoleLookup interface {
	RoleOf(ctx context.Context, address string) (string, error)
}

// Appender writes audit entries. Satisfied by audit.Service.
type Appender interface {
	Append(ctx context.Context, patient, doctor, details string) error
}

type Service struct {
	edges EdgeRepository
	roles RoleLookup
	audit Appender
	tx    ledger.Runner
}

func NewService(edges EdgeRepository, roles RoleLookup, audit Appender, tx ledger.Runner) *Service {
	return &Service{edges: edges, roles: roles, audit: audit, tx: tx}
}

// Grant authorizes doctor to access caller's records. Only the patient
// themselves may grant, both parties must be registered with the right
// roles, and granting twice is a no-op: the second call returns the
// original edge and writes no additional audit entry. Because of that
// idempotence a caller who saw an ambiguous outcome can safely retry.
func (s *Service) Grant(ctx context.Context, caller, patient, doctor string) (*Edge, error) {
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	doctorAddr, err := ethaddr.Normalize(doctor)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	callerAddr, err := ethaddr.Normalize(caller)
	if err != nil || callerAddr != patientAddr {
		return nil, ErrNotGranter
	}

	if err := s.requireRole(ctx, patientAddr, "patient"); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, doctorAddr, "doctor"); err != nil {
		return nil, err
	}

	var edge *Edge
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var created bool
		edge, created, err = s.edges.Insert(ctx, patientAddr, doctorAddr)
		if err != nil {
			return err
		}
		if created {
			return s.audit.Append(ctx, patientAddr, doctorAddr, "access granted to doctor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

func (s *Service) requireRole(ctx context.Context, address, want string) error {
	role, err := s.roles.RoleOf(ctx, address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownUser, address)
	}
	if role != want {
		return fmt.Errorf("%w: %s is not a %s", ErrWrongRole, address, want)
	}
	return nil
}

// HasGrant reports whether an edge exists. Consumed by the record and
// profile services before any access to a patient's data.
func (s *Service) HasGrant(ctx context.Context, patient, doctor string) (bool, error) {
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return false, ErrInvalidAddr
	}
	doctorAddr, err := ethaddr.Normalize(doctor)
	if err != nil {
		return false, ErrInvalidAddr
	}
	return s.edges.Has(ctx, patientAddr, doctorAddr)
}

// ListGrantedDoctors returns the edges granted by a patient.
func (s *Service) ListGrantedDoctors(ctx context.Context, patient string) ([]*Edge, error) {
	addr, err := ethaddr.Normalize(patient)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	return s.edges.ListByPatient(ctx, addr)
}

// ListGrantingPatients returns the edges held by a doctor. The result is
// the exact inverse of ListGrantedDoctors over the same edge set.
func (s *Service) ListGrantingPatients(ctx context.Context, doctor string) ([]*Edge, error) {
	addr, err := ethaddr.Normalize(doctor)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	return s.edges.ListByDoctor(ctx, addr)
}
