// Package memory provides an in-process store with the same contracts as the
// Postgres repositories. It backs STORAGE_DRIVER=memory and the service and
// handler tests.
package memory

import (
	"sync"
	"time"

	"github.com/noah-isme/formation-api/internal/models"
)

// Store holds every table behind a single lock, which gives each write the
// same atomicity as a Postgres transaction.
type Store struct {
	mu          sync.RWMutex
	principals  map[models.Role]map[string]models.Principal
	formations  map[string]models.Formation
	enrollments map[string]models.Enrollment
	audit       []models.AuditLog
	now         func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		principals: map[models.Role]map[string]models.Principal{
			models.RoleStudent:    {},
			models.RoleInstructor: {},
			models.RoleAdmin:      {},
		},
		formations:  map[string]models.Formation{},
		enrollments: map[string]models.Enrollment{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Principals returns the principal repository view of the store.
func (s *Store) Principals() *PrincipalRepository { return &PrincipalRepository{s: s} }

// Formations returns the formation repository view of the store.
func (s *Store) Formations() *FormationRepository { return &FormationRepository{s: s} }

// Enrollments returns the enrollment repository view of the store.
func (s *Store) Enrollments() *EnrollmentRepository { return &EnrollmentRepository{s: s} }

// Audit returns the audit repository view of the store.
func (s *Store) Audit() *AuditRepository { return &AuditRepository{s: s} }

// AuditLogs returns a snapshot of the recorded audit entries.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditLog, len(s.audit))
	copy(out, s.audit)
	return out
}
