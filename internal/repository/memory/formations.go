package memory

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/formation-api/internal/models"
)

// FormationRepository mirrors repository.FormationRepository.
type FormationRepository struct {
	s *Store
}

// Add stores a formation, assigning an id and creation time when missing.
func (r *FormationRepository) Add(f models.Formation) models.Formation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = r.s.now()
	}
	r.s.formations[f.ID] = f
	return f
}

// Capacity returns the formation with its live seat usage.
func (r *FormationRepository) Capacity(_ context.Context, id string) (*models.FormationCapacity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.formations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := r.s.capacityLocked(f)
	return &c, nil
}

// ListCapacity returns all formations ordered by start date then name.
func (r *FormationRepository) ListCapacity(_ context.Context) ([]models.FormationCapacity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.FormationCapacity, 0, len(r.s.formations))
	for _, f := range r.s.formations {
		out = append(out, r.s.capacityLocked(f))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) activeCountLocked(formationID string) int {
	n := 0
	for _, e := range s.enrollments {
		if e.FormationID == formationID && e.Status == models.EnrollmentStatusActive {
			n++
		}
	}
	return n
}

func (s *Store) capacityLocked(f models.Formation) models.FormationCapacity {
	active := s.activeCountLocked(f.ID)
	return models.FormationCapacity{
		Formation:         f,
		ActiveEnrollments: active,
		RemainingSpots:    models.RemainingSpots(f.AvailableSpots, active),
	}
}
