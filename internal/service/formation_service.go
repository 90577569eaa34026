package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/formation-api/internal/models"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

type formationRepository interface {
	Capacity(ctx context.Context, id string) (*models.FormationCapacity, error)
	ListCapacity(ctx context.Context) ([]models.FormationCapacity, error)
}

// FormationService exposes formations with their live remaining spots.
type FormationService struct {
	repo formationRepository
}

// NewFormationService constructs FormationService.
func NewFormationService(repo formationRepository) *FormationService {
	return &FormationService{repo: repo}
}

// Get returns one formation with its capacity.
func (s *FormationService) Get(ctx context.Context, id string) (*models.FormationCapacity, error) {
	formation, err := s.repo.Capacity(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "formation not found")
		}
		return nil, appErrors.Internal(err, "failed to load formation")
	}
	return formation, nil
}

// List returns all formations with their capacity.
func (s *FormationService) List(ctx context.Context) ([]models.FormationCapacity, error) {
	formations, err := s.repo.ListCapacity(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list formations")
	}
	if formations == nil {
		formations = []models.FormationCapacity{}
	}
	return formations, nil
}
