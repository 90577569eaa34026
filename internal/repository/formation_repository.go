package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/formation-api/internal/models"
)

// capacityQuery counts only ACTIVE rows. Completed and cancelled enrollments
// do not hold a seat.
const capacityQuery = `SELECT f.id, f.name, f.description, f.available_spots, f.start_date, f.end_date, f.instructor_id, f.created_at,
        COUNT(e.id) AS active_enrollments,
        GREATEST(f.available_spots - COUNT(e.id), 0) AS remaining_spots
        FROM formations f
        LEFT JOIN enrollments e ON e.formation_id = f.id AND e.status = 'ACTIVE'`

// FormationRepository reads formations and their live seat usage.
type FormationRepository struct {
	db *sqlx.DB
}

// NewFormationRepository constructs the repository.
func NewFormationRepository(db *sqlx.DB) *FormationRepository {
	return &FormationRepository{db: db}
}

// Capacity returns a formation with its active enrollment count, computed at
// read time.
func (r *FormationRepository) Capacity(ctx context.Context, id string) (*models.FormationCapacity, error) {
	const query = capacityQuery + ` WHERE f.id = $1 GROUP BY f.id`
	var capacity models.FormationCapacity
	if err := r.db.GetContext(ctx, &capacity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("formation capacity: %w", err)
	}
	return &capacity, nil
}

// ListCapacity returns every formation with its live seat usage.
func (r *FormationRepository) ListCapacity(ctx context.Context) ([]models.FormationCapacity, error) {
	const query = capacityQuery + ` GROUP BY f.id ORDER BY f.start_date, f.name`
	var formations []models.FormationCapacity
	if err := r.db.SelectContext(ctx, &formations, query); err != nil {
		return nil, fmt.Errorf("list formations: %w", err)
	}
	return formations, nil
}
