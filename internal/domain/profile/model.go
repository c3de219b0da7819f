package profile

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrPermissionDenied = errors.New("caller is not authorized for this patient's profile")
	ErrInvalidAddr      = errors.New("invalid account address")
)

// PatientProfile holds a patient's demographic and clinical summary data.
// One row per patient, created on first write. All fields are free-form
// text entered by the patient or a treating doctor.
type PatientProfile struct {
	Patient           string    `db:"patient" json:"patient"`
	Gender            string    `db:"gender" json:"gender"`
	DateOfBirth       string    `db:"date_of_birth" json:"date_of_birth"`
	BloodType         string    `db:"blood_type" json:"blood_type"`
	Phone             string    `db:"phone" json:"phone"`
	Address           string    `db:"address" json:"address"`
	Notes             string    `db:"notes" json:"notes"`
	MedicalConditions []string  `db:"medical_conditions" json:"medical_conditions"`
	Allergies         []string  `db:"allergies" json:"allergies"`
	LastUpdated       time.Time `db:"last_updated" json:"last_updated"`
}
