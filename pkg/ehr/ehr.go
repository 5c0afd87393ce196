// Package ehr provides access to the patient record store.
package ehr

import (
	"context"
)

// Vitals is the most recent vital signs snapshot for a patient.
type Vitals struct {
	BloodPressure string  `db:"blood_pressure" json:"blood_pressure"`
	HeartRate     int     `db:"heart_rate" json:"heart_rate"`
	Temperature   float64 `db:"temperature" json:"temperature"`
	SpO2          int     `db:"spo2" json:"spo2"`
	Weight        float64 `db:"weight" json:"weight"`
	RecordedDate  string  `db:"recorded_date" json:"recorded_date"`
}

// PatientRecord is a patient's complete record: demographics plus active
// conditions, active medications, and the latest vitals snapshot.
type PatientRecord struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Age       int    `db:"age" json:"age"`
	Gender    string `db:"gender" json:"gender"`
	BloodType string `db:"blood_type" json:"blood_type"`
	Allergies string `db:"allergies" json:"allergies"`

	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`
	Vitals      *Vitals  `json:"vitals,omitempty"`
}

// Visit is a single entry in a patient's visit history.
type Visit struct {
	VisitDate string `db:"visit_date" json:"visit_date"`
	Reason    string `db:"reason" json:"reason"`
	Summary   string `db:"summary" json:"summary"`
	Provider  string `db:"provider" json:"provider"`
}

// Store is the interface for patient record stores.
type Store interface {
	// GetPatient retrieves a patient's complete record by ID.
	// Returns errors.ErrPatientNotFound if the patient does not exist.
	GetPatient(ctx context.Context, patientID string) (*PatientRecord, error)

	// GetHistory retrieves a patient's visit history, most recent first.
	// Returns errors.ErrPatientNotFound if the patient has no visits.
	GetHistory(ctx context.Context, patientID string) ([]Visit, error)
}
