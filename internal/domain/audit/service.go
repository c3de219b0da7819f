// Package audit keeps the append-only access log. Other services append
// entries as part of their own transactions; this package never refuses an
// append on authorization grounds, because by the time an entry is written
// the triggering operation has already been authorized.
package audit

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medledger/medledger/pkg/ethaddr"
)

type Service struct {
	entries EntryRepository
}

func NewService(entries EntryRepository) *Service {
	return &Service{entries: entries}
}

// Append writes one entry. Runs inside the caller's transaction when one is
// on the context, so a domain mutation and its log line commit together.
func (s *Service) Append(ctx context.Context, patient, doctor, details string) error {
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return ErrInvalidAddr
	}
	doctorAddr, err := ethaddr.Normalize(doctor)
	if err != nil {
		return ErrInvalidAddr
	}
	if strings.TrimSpace(details) == "" {
		return ErrMissingDetails
	}
	return s.entries.Insert(ctx, &Entry{
		ID:      uuid.New(),
		Patient: patientAddr,
		Doctor:  doctorAddr,
		Details: strings.TrimSpace(details),
	})
}

// Query returns the log for one (patient, doctor) pair, oldest first.
func (s *Service) Query(ctx context.Context, patient, doctor string) ([]*Entry, error) {
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	doctorAddr, err := ethaddr.Normalize(doctor)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	return s.entries.ListByPair(ctx, patientAddr, doctorAddr)
}

// QueryAll returns a page of the whole log with the total count.
func (s *Service) QueryAll(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.entries.ListAll(ctx, limit, offset)
}
