package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded for enrollment and authentication events.
const (
	AuditActionRegister         = "REGISTER"
	AuditActionLogin            = "LOGIN"
	AuditActionLoginFailed      = "LOGIN_FAILED"
	AuditActionEnrollmentCreate = "ENROLLMENT_CREATE"
	AuditActionEnrollmentUpdate = "ENROLLMENT_UPDATE"
	AuditActionEnrollmentDelete = "ENROLLMENT_DELETE"
)

// Audit resources.
const (
	AuditResourcePrincipal  = "principal"
	AuditResourceEnrollment = "enrollment"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	ActorID    *string         `db:"actor_id" json:"actorId,omitempty"`
	ActorRole  *Role           `db:"actor_role" json:"actorRole,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resourceId,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ipAddress"`
	UserAgent  string          `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}
