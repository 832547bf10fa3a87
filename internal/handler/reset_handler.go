package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

// ResetHandler exposes the academic-year reset preview and execution.
type ResetHandler struct {
	service *service.ResetService
}

// NewResetHandler creates a new handler.
func NewResetHandler(svc *service.ResetService) *ResetHandler {
	return &ResetHandler{service: svc}
}

// Preview godoc
// @Summary Preview academic-year reset
// @Description Consistent snapshot of everything a reset would touch
// @Tags Reset
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reset/preview [get]
func (h *ResetHandler) Preview(c *gin.Context) {
	preview, err := h.service.Preview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"preview": preview,
		"stage":   models.ResetStageReview,
	}, nil)
}

// Execute godoc
// @Summary Execute academic-year reset
// @Description Irreversibly wipe the cycle after all three gates pass
// @Tags Reset
// @Accept json
// @Produce json
// @Param payload body dto.ExecuteResetRequest true "Gate inputs"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /reset/execute [post]
func (h *ResetHandler) Execute(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ExecuteResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset payload"))
		return
	}

	result, err := h.service.Execute(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.ResetResultResponse{
		ID:           result.ID,
		AcademicYear: result.AcademicYear,
		Stage:        models.ResetStageCompleted,
		DBReset:      result.DBReset,
		Cleanup:      result.Cleanup,
		ExecutedAt:   result.ExecutedAt.Format(time.RFC3339),
	}, nil)
}
