// Package mock provides an in-memory patient record store for testing.
package mock

import (
	"context"
	"sync"

	"github.com/medassist/medassist/pkg/ehr"
	"github.com/medassist/medassist/pkg/errors"
)

// Store is an in-memory implementation of ehr.Store.
type Store struct {
	mu       sync.RWMutex
	patients map[string]*ehr.PatientRecord
	visits   map[string][]ehr.Visit
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		patients: make(map[string]*ehr.PatientRecord),
		visits:   make(map[string][]ehr.Visit),
	}
}

// AddPatient registers a patient record.
func (s *Store) AddPatient(rec *ehr.PatientRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[rec.ID] = rec
}

// AddVisit appends a visit to a patient's history.
func (s *Store) AddVisit(patientID string, visit ehr.Visit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[patientID] = append(s.visits[patientID], visit)
}

// GetPatient retrieves a patient record by ID.
func (s *Store) GetPatient(ctx context.Context, patientID string) (*ehr.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.patients[patientID]
	if !ok {
		return nil, errors.ErrPatientNotFound
	}
	copied := *rec
	return &copied, nil
}

// GetHistory retrieves a patient's visit history.
func (s *Store) GetHistory(ctx context.Context, patientID string) ([]ehr.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visits, ok := s.visits[patientID]
	if !ok || len(visits) == 0 {
		return nil, errors.ErrPatientNotFound
	}
	out := make([]ehr.Visit, len(visits))
	copy(out, visits)
	return out, nil
}
