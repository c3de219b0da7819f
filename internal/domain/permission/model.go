package permission

import (
	"errors"
	"time"
)

var (
	ErrUnknownUser = errors.New("party is not a registered user")
	ErrWrongRole   = errors.New("party does not hold the required role")
	ErrNotGranter  = errors.New("only the patient may grant access to their records")
	ErrInvalidAddr = errors.New("invalid account address")
)

// Edge records a patient's authorization of a doctor. At most one edge
// exists per (patient, doctor) pair; granting again is a no-op that keeps
// the original timestamp. There is no revocation.
type Edge struct {
	Patient   string    `db:"patient" json:"patient"`
	Doctor    string    `db:"doctor" json:"doctor"`
	GrantedAt time.Time `db:"granted_at" json:"granted_at"`
}
