package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/formation-api/internal/service"
	"github.com/noah-isme/formation-api/pkg/response"
)

// FormationHandler exposes the formation catalogue with live capacity.
type FormationHandler struct {
	formations *service.FormationService
}

// NewFormationHandler constructs FormationHandler.
func NewFormationHandler(formations *service.FormationService) *FormationHandler {
	return &FormationHandler{formations: formations}
}

// List godoc
// @Summary List formations
// @Tags Formations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /formations [get]
func (h *FormationHandler) List(c *gin.Context) {
	formations, err := h.formations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, formations, len(formations))
}

// Get godoc
// @Summary Get formation
// @Tags Formations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Formation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /formations/{id} [get]
func (h *FormationHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	formation, err := h.formations.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, formation)
}
