package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/formation-api/internal/models"
)

const (
	studentColumns    = `id, first_name, last_name, email, password_hash, phone, date_of_birth, created_at, updated_at`
	instructorColumns = `id, first_name, last_name, email, password_hash, speciality, phone, created_at, updated_at`
	adminColumns      = `id, first_name, last_name, email, password_hash, created_at, updated_at`
)

// PrincipalRepository stores principals in one table per role. Emails are
// unique within a table only.
type PrincipalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates a new instance of PrincipalRepository.
func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// FindByEmail looks up a principal by email within the partition for role.
// It returns sql.ErrNoRows when the partition has no such email.
func (r *PrincipalRepository) FindByEmail(ctx context.Context, role models.Role, email string) (models.Principal, error) {
	return r.findOne(ctx, role, "email", email)
}

// FindByID looks up a principal by id within the partition for role.
func (r *PrincipalRepository) FindByID(ctx context.Context, role models.Role, id string) (models.Principal, error) {
	return r.findOne(ctx, role, "id", id)
}

func (r *PrincipalRepository) findOne(ctx context.Context, role models.Role, column, value string) (models.Principal, error) {
	var (
		dest    models.Principal
		query   string
		columns string
		table   string
	)
	switch role {
	case models.RoleStudent:
		dest, columns, table = &models.Student{}, studentColumns, "students"
	case models.RoleInstructor:
		dest, columns, table = &models.Instructor{}, instructorColumns, "instructors"
	case models.RoleAdmin:
		dest, columns, table = &models.Admin{}, adminColumns, "admins"
	default:
		return nil, fmt.Errorf("unknown principal role %q", role)
	}
	// column is one of two literals chosen above, never caller input
	query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 LIMIT 1`, columns, table, column)

	if err := r.db.GetContext(ctx, dest, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by %s: %w", table, column, err)
	}
	return dest, nil
}

// Create persists a principal into the partition matching its concrete type.
func (r *PrincipalRepository) Create(ctx context.Context, principal models.Principal) error {
	acc := principal.Credentials()
	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = acc.CreatedAt

	var (
		query string
		args  []interface{}
	)
	switch p := principal.(type) {
	case *models.Student:
		query = `INSERT INTO students (` + studentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		args = []interface{}{acc.ID, acc.FirstName, acc.LastName, acc.Email, acc.PasswordHash, p.Phone, p.DateOfBirth, acc.CreatedAt, acc.UpdatedAt}
	case *models.Instructor:
		query = `INSERT INTO instructors (` + instructorColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		args = []interface{}{acc.ID, acc.FirstName, acc.LastName, acc.Email, acc.PasswordHash, p.Speciality, p.Phone, acc.CreatedAt, acc.UpdatedAt}
	case *models.Admin:
		query = `INSERT INTO admins (` + adminColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
		args = []interface{}{acc.ID, acc.FirstName, acc.LastName, acc.Email, acc.PasswordHash, acc.CreatedAt, acc.UpdatedAt}
	default:
		return fmt.Errorf("unsupported principal type %T", principal)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pqCode(err) == pqUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create %s: %w", principal.Role(), err)
	}
	return nil
}
