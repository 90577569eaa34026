package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors translated into API errors by the service layer.
var (
	ErrDuplicateEmail      = errors.New("email already registered in partition")
	ErrDuplicateEnrollment = errors.New("enrollment already exists for student and formation")
	ErrCapacityExceeded    = errors.New("formation has no remaining spots")
	ErrStatusConflict      = errors.New("enrollment is no longer active")
	ErrMissingReference    = errors.New("referenced record does not exist")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
