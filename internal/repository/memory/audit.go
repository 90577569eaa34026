package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/noah-isme/formation-api/internal/models"
)

// AuditRepository appends audit records to the store.
type AuditRepository struct {
	s *Store
}

// Create records an audit entry.
func (r *AuditRepository) Create(_ context.Context, log *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.s.now()
	}
	r.s.audit = append(r.s.audit, *log)
	return nil
}
