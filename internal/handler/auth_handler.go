package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/formation-api/internal/dto"
	"github.com/noah-isme/formation-api/internal/middleware"
	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/service"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
	"github.com/noah-isme/formation-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// RegisterStudent godoc
// @Summary Register a student
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterStudentRequest true "Student registration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register/student [post]
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid registration payload"))
		return
	}
	res, err := h.service.RegisterStudent(c.Request.Context(), req)
	h.respondAuth(c, http.StatusCreated, res, err)
}

// RegisterInstructor godoc
// @Summary Register an instructor
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterInstructorRequest true "Instructor registration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register/instructor [post]
func (h *AuthHandler) RegisterInstructor(c *gin.Context) {
	var req dto.RegisterInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid registration payload"))
		return
	}
	res, err := h.service.RegisterInstructor(c.Request.Context(), req)
	h.respondAuth(c, http.StatusCreated, res, err)
}

// RegisterAdmin godoc
// @Summary Register an admin
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterAdminRequest true "Admin registration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register/admin [post]
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req dto.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid registration payload"))
		return
	}
	res, err := h.service.RegisterAdmin(c.Request.Context(), req)
	h.respondAuth(c, http.StatusCreated, res, err)
}

// Login godoc
// @Summary Authenticate a principal
// @Description Looks the email up among students, then instructors, then admins.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid login payload"))
		return
	}
	c.Set(middleware.ContextAuditDetailKey, map[string]interface{}{"email": models.NormalizeEmail(req.Email)})

	res, err := h.service.Login(c.Request.Context(), req)
	h.respondAuth(c, http.StatusOK, res, err)
}

// Me godoc
// @Summary Current principal
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.InfoOf(principal))
}

func (h *AuthHandler) respondAuth(c *gin.Context, status int, res *models.AuthResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.ContextAuditActorKey, models.Actor{ID: res.Principal.ID, Role: res.Principal.Role})
	c.Set(middleware.ContextAuditResourceIDKey, res.Principal.ID)
	response.WithToken(c, status, res.Token, dto.AuthResponse(res.Principal))
}
