package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/formation-api/internal/middleware"
	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/service"
)

// RouterConfig carries the handlers and cross-cutting services mounted
// under the API prefix.
type RouterConfig struct {
	Auth        *AuthHandler
	Formations  *FormationHandler
	Enrollments *EnrollmentHandler

	Guard *service.AccessGuard
	Audit *service.AuditService

	// StaffRegistration mounts the instructor and admin registration routes.
	StaffRegistration bool
	AuthRateLimit     middleware.RateLimitConfig
}

// RegisterRoutes mounts the API on the given group.
func RegisterRoutes(api *gin.RouterGroup, cfg RouterConfig) {
	requireAuth := middleware.JWT(cfg.Guard)

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(cfg.AuthRateLimit))
	{
		registerAudit := middleware.Audit(cfg.Audit, models.AuditActionRegister, models.AuditResourcePrincipal)
		auth.POST("/register/student", registerAudit, cfg.Auth.RegisterStudent)
		if cfg.StaffRegistration {
			auth.POST("/register/instructor", registerAudit, cfg.Auth.RegisterInstructor)
			auth.POST("/register/admin", registerAudit, cfg.Auth.RegisterAdmin)
		}
		auth.POST("/login",
			middleware.AuditOutcome(cfg.Audit, models.AuditActionLogin, models.AuditActionLoginFailed, models.AuditResourcePrincipal),
			cfg.Auth.Login)
		auth.GET("/me", requireAuth, cfg.Auth.Me)
	}

	createAudit := middleware.Audit(cfg.Audit, models.AuditActionEnrollmentCreate, models.AuditResourceEnrollment)

	formations := api.Group("/formations", requireAuth)
	{
		formations.GET("", cfg.Formations.List)
		formations.GET("/:id", cfg.Formations.Get)
		formations.POST("/:id/enroll", middleware.RequireRoles(models.RoleStudent), createAudit, cfg.Enrollments.Enroll)
	}

	enrollments := api.Group("/enrollments", requireAuth)
	{
		enrollments.POST("", middleware.RequireRoles(models.RoleAdmin), createAudit, cfg.Enrollments.Create)
		enrollments.GET("/student/:studentId", middleware.RBAC(string(models.RoleAdmin), middleware.Self), cfg.Enrollments.ListByStudent)
		enrollments.GET("/:id", cfg.Enrollments.Get)
		enrollments.PATCH("/:id",
			middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(cfg.Audit, models.AuditActionEnrollmentUpdate, models.AuditResourceEnrollment),
			cfg.Enrollments.UpdateStatus)
		enrollments.DELETE("/:id",
			middleware.Audit(cfg.Audit, models.AuditActionEnrollmentDelete, models.AuditResourceEnrollment),
			cfg.Enrollments.Delete)
	}
}
