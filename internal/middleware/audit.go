package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/service"
	"github.com/noah-isme/formation-api/pkg/middleware/requestid"
)

const (
	// ContextAuditActorKey carries a models.Actor for routes where the caller
	// only becomes known inside the handler (register, login).
	ContextAuditActorKey = "auditActor"
	// ContextAuditResourceIDKey carries the id of the resource the handler touched.
	ContextAuditResourceIDKey = "auditResourceID"
	// ContextAuditDetailKey carries extra payload fields.
	ContextAuditDetailKey = "auditDetail"
)

// Audit records an entry after every successful request on the route.
func Audit(audit *service.AuditService, action, resource string) gin.HandlerFunc {
	return auditWith(audit, action, "", resource)
}

// AuditOutcome records action on success and failureAction on client
// errors. Server errors and throttled requests are not recorded.
func AuditOutcome(audit *service.AuditService, action, failureAction, resource string) gin.HandlerFunc {
	return auditWith(audit, action, failureAction, resource)
}

func auditWith(audit *service.AuditService, action, failureAction, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if audit == nil {
			c.Next()
			return
		}
		start := time.Now().UTC()
		c.Next()

		status := c.Writer.Status()
		recorded := action
		switch {
		case status < http.StatusBadRequest:
		case failureAction != "" && status < http.StatusInternalServerError && status != http.StatusTooManyRequests:
			recorded = failureAction
		default:
			return
		}

		detail := map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": requestid.Value(c),
		}
		if extra, ok := c.Get(ContextAuditDetailKey); ok {
			if fields, ok := extra.(map[string]interface{}); ok {
				for k, v := range fields {
					detail[k] = v
				}
			}
		}
		payload, _ := json.Marshal(detail)

		entry := models.AuditLog{
			Action:    recorded,
			Resource:  resource,
			Payload:   payload,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			CreatedAt: start,
		}
		if actor, ok := auditActor(c); ok {
			entry.ActorID = &actor.ID
			entry.ActorRole = &actor.Role
		}
		if id := c.GetString(ContextAuditResourceIDKey); id != "" {
			entry.ResourceID = &id
		} else if id := c.Param("id"); id != "" && resource == models.AuditResourceEnrollment {
			entry.ResourceID = &id
		}
		audit.Record(entry)
	}
}

func auditActor(c *gin.Context) (models.Actor, bool) {
	if value, ok := c.Get(ContextUserKey); ok {
		if claims, ok := value.(*models.JWTClaims); ok {
			return models.ActorOf(claims), true
		}
	}
	if value, ok := c.Get(ContextAuditActorKey); ok {
		if actor, ok := value.(models.Actor); ok {
			return actor, true
		}
	}
	return models.Actor{}, false
}
