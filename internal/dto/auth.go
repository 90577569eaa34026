package dto

import "github.com/noah-isme/formation-api/internal/models"

// RegisterStudentRequest is the student self-registration payload.
type RegisterStudentRequest struct {
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

// RegisterInstructorRequest is the instructor registration payload.
type RegisterInstructorRequest struct {
	FirstName  string  `json:"firstName" validate:"required,max=100"`
	LastName   string  `json:"lastName" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,email,max=254"`
	Password   string  `json:"password" validate:"required,min=8,max=72"`
	Speciality *string `json:"speciality" validate:"omitempty,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
}

// RegisterAdminRequest is the admin registration payload.
type RegisterAdminRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest holds credentials for authenticating a principal.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the data section of register and login responses.
type AuthResponse = models.PrincipalInfo
