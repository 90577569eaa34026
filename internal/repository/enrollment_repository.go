package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/formation-api/internal/models"
)

const enrollmentColumns = `id, student_id, formation_id, enrollment_date, status`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListByStudent returns every enrollment of a student, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 ORDER BY enrollment_date DESC, id`
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// Exists reports whether any enrollment, whatever its status, links the
// student to the formation.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, formationID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND formation_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, formationID); err != nil {
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return exists, nil
}

// Create inserts an ACTIVE enrollment. The formation row is locked for the
// duration of the transaction so concurrent creates for the same formation
// see each other's inserts before counting seats.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (err error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusActive

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var spots int
	const lockQuery = `SELECT available_spots FROM formations WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &spots, lockQuery, enrollment.FormationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock formation: %w", err)
	}

	var exists bool
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND formation_id = $2)`
	if err = tx.GetContext(ctx, &exists, existsQuery, enrollment.StudentID, enrollment.FormationID); err != nil {
		return fmt.Errorf("check enrollment exists: %w", err)
	}
	if exists {
		return ErrDuplicateEnrollment
	}

	var active int
	const countQuery = `SELECT COUNT(*) FROM enrollments WHERE formation_id = $1 AND status = $2`
	if err = tx.GetContext(ctx, &active, countQuery, enrollment.FormationID, models.EnrollmentStatusActive); err != nil {
		return fmt.Errorf("count active enrollments: %w", err)
	}
	if active >= spots {
		return ErrCapacityExceeded
	}

	const insertQuery = `INSERT INTO enrollments (` + enrollmentColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, insertQuery, enrollment.ID, enrollment.StudentID, enrollment.FormationID, enrollment.EnrollmentDate, enrollment.Status); err != nil {
		switch pqCode(err) {
		case pqUniqueViolation:
			return ErrDuplicateEnrollment
		case pqForeignKeyViolation:
			return ErrMissingReference
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// TransitionStatus moves an enrollment from one status to another. The update
// only applies while the row still has the expected status; otherwise
// ErrStatusConflict is returned.
func (r *EnrollmentRepository) TransitionStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) (*models.Enrollment, error) {
	const query = `UPDATE enrollments SET status = $3 WHERE id = $1 AND status = $2 RETURNING ` + enrollmentColumns
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update enrollment status: %w", err)
	}
	return &enrollment, nil
}

// Delete removes an enrollment, freeing its seat. It returns sql.ErrNoRows
// when nothing was deleted.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
