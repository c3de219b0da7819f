package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAddr    = errors.New("invalid account address")
	ErrMissingDetails = errors.New("audit entry details must not be empty")
)

// Entry is one line of the append-only access log. Entries are never
// updated or deleted; corrections are appended as new entries.
type Entry struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Patient    string    `db:"patient" json:"patient"`
	Doctor     string    `db:"doctor" json:"doctor"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	Details    string    `db:"details" json:"details"`
}
