package record

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("caller is not authorized for this patient's records")
	ErrInvalidReference = errors.New("content reference is empty or malformed")
	ErrInvalidAddr      = errors.New("invalid account address")
	ErrMissingFileName  = errors.New("file name must not be empty")
)

// FileRecord indexes one stored document: who it belongs to, which doctor
// added it, and the content-addressed reference to the bytes. The bytes
// themselves live in the blob store; the index row is immutable once
// written.
type FileRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Patient    string    `db:"patient" json:"patient"`
	Doctor     string    `db:"doctor" json:"doctor"`
	FileName   string    `db:"file_name" json:"file_name"`
	ContentRef string    `db:"content_ref" json:"content_ref"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Receipt confirms an accepted record.
type Receipt struct {
	ID          uuid.UUID `json:"id"`
	ContentRef  string    `json:"content_ref"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
