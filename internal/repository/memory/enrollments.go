package memory

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository"
)

// EnrollmentRepository mirrors repository.EnrollmentRepository, including
// the atomic seat check in Create.
type EnrollmentRepository struct {
	s *Store
}

// FindByID returns sql.ErrNoRows for unknown enrollments.
func (r *EnrollmentRepository) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(_ context.Context, studentID string) ([]models.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Enrollment{}
	for _, e := range r.s.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrollmentDate.Equal(out[j].EnrollmentDate) {
			return out[i].EnrollmentDate.After(out[j].EnrollmentDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Exists reports whether any enrollment links the pair, whatever its status.
func (r *EnrollmentRepository) Exists(_ context.Context, studentID, formationID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.existsLocked(studentID, formationID), nil
}

// Create checks the formation, uniqueness, capacity and the student
// reference in one critical section, in the same order as the SQL store.
func (r *EnrollmentRepository) Create(_ context.Context, enrollment *models.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.formations[enrollment.FormationID]
	if !ok {
		return sql.ErrNoRows
	}
	if r.s.existsLocked(enrollment.StudentID, enrollment.FormationID) {
		return repository.ErrDuplicateEnrollment
	}
	if r.s.activeCountLocked(f.ID) >= f.AvailableSpots {
		return repository.ErrCapacityExceeded
	}
	if _, ok := r.s.principals[models.RoleStudent][enrollment.StudentID]; !ok {
		return repository.ErrMissingReference
	}

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = r.s.now()
	}
	enrollment.Status = models.EnrollmentStatusActive
	r.s.enrollments[enrollment.ID] = *enrollment
	return nil
}

// TransitionStatus applies the change only while the row has status from.
func (r *EnrollmentRepository) TransitionStatus(_ context.Context, id string, from, to models.EnrollmentStatus) (*models.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.enrollments[id]
	if !ok || e.Status != from {
		return nil, repository.ErrStatusConflict
	}
	e.Status = to
	r.s.enrollments[id] = e
	return &e, nil
}

// Delete returns sql.ErrNoRows when nothing was deleted.
func (r *EnrollmentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.enrollments, id)
	return nil
}

func (s *Store) existsLocked(studentID, formationID string) bool {
	for _, e := range s.enrollments {
		if e.StudentID == studentID && e.FormationID == formationID {
			return true
		}
	}
	return false
}
