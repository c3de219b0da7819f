package identity

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrDuplicateAddress = errors.New("address already registered")
	ErrInvalidAddress   = errors.New("invalid account address")
	ErrInvalidRole      = errors.New("role must be patient or doctor")
	ErrMissingName      = errors.New("name is required")
)

// Role is a user's registry role, fixed at registration.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// ParseRole accepts the string names and the ledger's numeric codes
// (0 = patient, 1 = doctor).
func ParseRole(s string) (Role, error) {
	switch s {
	case "patient", "0":
		return RolePatient, nil
	case "doctor", "1":
		return RoleDoctor, nil
	}
	return "", ErrInvalidRole
}

// UnmarshalJSON lets clients send the role as "patient"/"doctor" or as the
// numeric enum 0/1.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int
		if err := json.Unmarshal(b, &n); err != nil {
			return ErrInvalidRole
		}
		switch n {
		case 0:
			s = "0"
		case 1:
			s = "1"
		default:
			return ErrInvalidRole
		}
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User maps to the users table. The address is the identity handle; a user
// is created once and never deleted, and the role never changes.
type User struct {
	Address     string    `db:"address" json:"address"`
	Name        string    `db:"name" json:"name"`
	ContactInfo string    `db:"contact_info" json:"contact_info"`
	Role        Role      `db:"role" json:"role"`
	Registered  bool      `db:"registered" json:"registered"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Receipt confirms an applied registration, the API analogue of a
// transaction receipt.
type Receipt struct {
	ID          uuid.UUID `json:"id"`
	Address     string    `json:"address"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
