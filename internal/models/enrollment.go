package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. ACTIVE is the only non-terminal state.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Terminal reports whether no transition may leave s.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusCompleted || s == EnrollmentStatusCancelled
}

// CanTransition reports whether an enrollment may move from s to next.
func (s EnrollmentStatus) CanTransition(next EnrollmentStatus) bool {
	return s == EnrollmentStatusActive && next.Terminal()
}

// Enrollment links a student to a formation.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"studentId"`
	FormationID    string           `db:"formation_id" json:"formationId"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollmentDate"`
	Status         EnrollmentStatus `db:"status" json:"status"`
}
