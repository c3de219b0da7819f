// Package profile manages patient demographic data. A profile is readable
// and writable by its owner and by any doctor the owner has granted; every
// write lands one audit entry in the same transaction as the row update.
package profile

import (
	"context"
	"fmt"

	"github.com/medledger/medledger/internal/platform/ledger"
	"github.com/medledger/medledger/pkg/ethaddr"
)

// GrantChecker reports whether a patient has granted a doctor access.
// Satisfied by permission.Service.
type GrantChecker interface {
	HasGrant(ctx context.Context, patient, doctor string) (bool, error)
}

// Appender writes audit entries. Satisfied by audit.Service.
type Appender interface {
	Append(ctx context.Context, patient, doctor, details string) error
}

type Service struct {
	profiles ProfileRepository
	grants   GrantChecker
	audit    Appender
	tx       ledger.Runner
}

func NewService(profiles ProfileRepository, grants GrantChecker, audit Appender, tx ledger.Runner) *Service {
	return &Service{profiles: profiles, grants: grants, audit: audit, tx: tx}
}

// Get returns a patient's profile. The owner and granted doctors may read.
func (s *Service) Get(ctx context.Context, caller, patient string) (*PatientProfile, error) {
	patientAddr, err := s.authorize(ctx, caller, patient)
	if err != nil {
		return nil, err
	}
	return s.profiles.GetByPatient(ctx, patientAddr)
}

// GetUnchecked returns a profile with no caller check, for the auditor
// surface.
func (s *Service) GetUnchecked(ctx context.Context, patient string) (*PatientProfile, error) {
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	return s.profiles.GetByPatient(ctx, patientAddr)
}

// Update writes the profile, creating it on first write. The row and its
// audit entry commit together. The audit entry names the writing doctor,
// or the patient on both sides for a self-edit.
func (s *Service) Update(ctx context.Context, caller, patient string, p *PatientProfile) (*PatientProfile, error) {
	patientAddr, err := s.authorize(ctx, caller, patient)
	if err != nil {
		return nil, err
	}
	callerAddr, _ := ethaddr.Normalize(caller)

	p.Patient = patientAddr
	if p.MedicalConditions == nil {
		p.MedicalConditions = []string{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.profiles.Upsert(ctx, p); err != nil {
			return err
		}
		return s.audit.Append(ctx, patientAddr, callerAddr, "profile updated")
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// authorize normalizes both addresses and checks caller is the patient or
// a granted doctor. Returns the normalized patient address.
func (s *Service) authorize(ctx context.Context, caller, patient string) (string, error) {
	callerAddr, err := ethaddr.Normalize(caller)
	if err != nil {
		return "", ErrInvalidAddr
	}
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return "", ErrInvalidAddr
	}
	if callerAddr == patientAddr {
		return patientAddr, nil
	}
	ok, err := s.grants.HasGrant(ctx, patientAddr, callerAddr)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: no grant from %s to %s", ErrPermissionDenied, patientAddr, callerAddr)
	}
	return patientAddr, nil
}
