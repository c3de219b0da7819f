// Package record indexes stored medical documents. A record row points at
// content in the blob store by its content-addressed reference; adding a
// record and logging it are one transaction, so the index and the log
// cannot drift apart.
package record

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/medledger/medledger/internal/platform/blobstore"
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
	records RecordRepository
	grants  GrantChecker
	audit   Appender
	blobs   blobstore.Store
	tx      ledger.Runner
}

func NewService(records RecordRepository, grants GrantChecker, audit Appender, blobs blobstore.Store, tx ledger.Runner) *Service {
	return &Service{records: records, grants: grants, audit: audit, blobs: blobs, tx: tx}
}

// AddRecord indexes an already-stored blob for a patient. The caller must
// be a doctor holding a grant from the patient. The record row and its
// audit entry commit together.
func (s *Service) AddRecord(ctx context.Context, caller, patient, fileName, contentRef string) (*Receipt, error) {
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	doctorAddr, err := ethaddr.Normalize(caller)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, ErrMissingFileName
	}
	if !blobstore.ValidRef(contentRef) {
		return nil, ErrInvalidReference
	}

	ok, err := s.grants.HasGrant(ctx, patientAddr, doctorAddr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no grant from %s to %s", ErrPermissionDenied, patientAddr, doctorAddr)
	}

	rec := &FileRecord{
		ID:         uuid.New(),
		Patient:    patientAddr,
		Doctor:     doctorAddr,
		FileName:   fileName,
		ContentRef: contentRef,
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.records.Insert(ctx, rec); err != nil {
			return err
		}
		return s.audit.Append(ctx, patientAddr, doctorAddr, "record added: "+fileName)
	})
	if err != nil {
		return nil, err
	}
	return &Receipt{ID: rec.ID, ContentRef: rec.ContentRef, ConfirmedAt: rec.UploadedAt}, nil
}

// UploadRecord stores the bytes first, then indexes the returned reference
// via AddRecord. If the index step is rejected the blob stays in the store
// unreferenced, which is harmless: references are content hashes and a
// later upload of the same bytes reuses it.
func (s *Service) UploadRecord(ctx context.Context, caller, patient, fileName string, content io.Reader) (*Receipt, error) {
	ref, err := s.blobs.Put(ctx, content)
	if err != nil {
		return nil, err
	}
	return s.AddRecord(ctx, caller, patient, fileName, ref)
}

// ListRecords returns a patient's records in the order they were added,
// optionally filtered to one authoring doctor. Visible to the patient, a
// granted doctor, and the auditor.
func (s *Service) ListRecords(ctx context.Context, patient, doctorFilter string) ([]*FileRecord, error) {
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return nil, ErrInvalidAddr
	}
	filter := ""
	if doctorFilter != "" {
		if filter, err = ethaddr.Normalize(doctorFilter); err != nil {
			return nil, ErrInvalidAddr
		}
	}
	return s.records.ListByPatient(ctx, patientAddr, filter)
}

// Authorize reports whether caller may read the patient's records: the
// patient themselves or a doctor holding a grant.
func (s *Service) Authorize(ctx context.Context, caller, patient string) error {
	callerAddr, err := ethaddr.Normalize(caller)
	if err != nil {
		return ErrInvalidAddr
	}
	patientAddr, err := ethaddr.Normalize(patient)
	if err != nil {
		return ErrInvalidAddr
	}
	if callerAddr == patientAddr {
		return nil
	}
	ok, err := s.grants.HasGrant(ctx, patientAddr, callerAddr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no grant from %s to %s", ErrPermissionDenied, patientAddr, callerAddr)
	}
	return nil
}

// FetchContent streams the bytes behind a record. Allowed for the patient,
// the authoring doctor, and any doctor holding a grant.
func (s *Service) FetchContent(ctx context.Context, caller string, id uuid.UUID) (*FileRecord, io.ReadCloser, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	callerAddr, err := ethaddr.Normalize(caller)
	if err != nil {
		return nil, nil, ErrInvalidAddr
	}
	if callerAddr != rec.Patient && callerAddr != rec.Doctor {
		ok, err := s.grants.HasGrant(ctx, rec.Patient, callerAddr)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, fmt.Errorf("%w: no grant from %s to %s", ErrPermissionDenied, rec.Patient, callerAddr)
		}
	}

	body, err := s.blobs.Get(ctx, rec.ContentRef)
	if err != nil {
		return nil, nil, err
	}
	return rec, body, nil
}
