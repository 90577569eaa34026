package memory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository"
)

// PrincipalRepository mirrors repository.PrincipalRepository.
type PrincipalRepository struct {
	s *Store
}

// FindByEmail returns sql.ErrNoRows when the partition has no such email.
func (r *PrincipalRepository) FindByEmail(_ context.Context, role models.Role, email string) (models.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	partition, ok := r.s.principals[role]
	if !ok {
		return nil, fmt.Errorf("unknown principal role %q", role)
	}
	for _, p := range partition {
		if p.Credentials().Email == email {
			return clonePrincipal(p), nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID returns sql.ErrNoRows when the partition has no such id.
func (r *PrincipalRepository) FindByID(_ context.Context, role models.Role, id string) (models.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	partition, ok := r.s.principals[role]
	if !ok {
		return nil, fmt.Errorf("unknown principal role %q", role)
	}
	p, ok := partition[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clonePrincipal(p), nil
}

// Create enforces per-partition email uniqueness.
func (r *PrincipalRepository) Create(_ context.Context, principal models.Principal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	partition, ok := r.s.principals[principal.Role()]
	if !ok {
		return fmt.Errorf("unsupported principal type %T", principal)
	}
	acc := principal.Credentials()
	for _, existing := range partition {
		if existing.Credentials().Email == acc.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = r.s.now()
	}
	acc.UpdatedAt = acc.CreatedAt
	partition[acc.ID] = clonePrincipal(principal)
	return nil
}

// Remove deletes a principal, as an operator would directly in the database.
func (r *PrincipalRepository) Remove(role models.Role, id string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.principals[role], id)
	if role != models.RoleStudent {
		return
	}
	for eid, e := range r.s.enrollments {
		if e.StudentID == id {
			delete(r.s.enrollments, eid)
		}
	}
}

func clonePrincipal(p models.Principal) models.Principal {
	switch v := p.(type) {
	case *models.Student:
		c := *v
		return &c
	case *models.Instructor:
		c := *v
		return &c
	case *models.Admin:
		c := *v
		return &c
	}
	return p
}
