package dto

import "github.com/noah-isme/formation-api/internal/models"

// CreateEnrollmentRequest lets an admin enroll any student.
type CreateEnrollmentRequest struct {
	StudentID   string `json:"studentId" validate:"required,uuid"`
	FormationID string `json:"formationId" validate:"required,uuid"`
}

// UpdateEnrollmentStatusRequest moves an enrollment to a new status. Which
// targets are legal is decided by the enrollment service.
type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required"`
}
