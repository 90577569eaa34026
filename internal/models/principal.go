package models

import (
	"strings"
	"time"
)

// Role identifies the principal partition a caller belongs to.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// LoginProbeOrder is the order in which login searches the principal
// partitions. The first partition holding the email wins.
var LoginProbeOrder = []Role{RoleStudent, RoleInstructor, RoleAdmin}

// Valid reports whether r names a known partition.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Principal is implemented by every authenticatable account kind.
type Principal interface {
	Role() Role
	Credentials() *Account
}

// Account holds the fields shared by all principal kinds.
type Account struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Credentials returns the shared account record.
func (a *Account) Credentials() *Account { return a }

// Student is a learner who may enroll in formations.
type Student struct {
	Account
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
}

// Role implements Principal.
func (*Student) Role() Role { return RoleStudent }

// Instructor teaches formations.
type Instructor struct {
	Account
	Speciality *string `db:"speciality" json:"speciality,omitempty"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
}

// Role implements Principal.
func (*Instructor) Role() Role { return RoleInstructor }

// Admin manages enrollments on behalf of everyone.
type Admin struct {
	Account
}

// Role implements Principal.
func (*Admin) Role() Role { return RoleAdmin }

// PrincipalInfo is the public view of an authenticated principal.
type PrincipalInfo struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// InfoOf projects p onto its public view.
func InfoOf(p Principal) PrincipalInfo {
	acc := p.Credentials()
	return PrincipalInfo{
		ID:        acc.ID,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Email:     acc.Email,
		Role:      p.Role(),
	}
}

// NormalizeEmail is applied to every email before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
