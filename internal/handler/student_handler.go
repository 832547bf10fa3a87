package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/service"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

// StudentHandler exposes gated student registration.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Register godoc
// @Summary Register student
// @Description Create a student account after the PRN clears the eligibility gate
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.RegisterStudentRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	student, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// ListColleges godoc
// @Summary List colleges
// @Description College roster for registration forms
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /colleges [get]
func (h *StudentHandler) ListColleges(c *gin.Context) {
	records, err := h.service.ListColleges(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// CheckEligibility godoc
// @Summary Check PRN eligibility
// @Description Resolve whether an identifier may register, without side effects
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param payload body dto.EligibilityCheckRequest true "Check payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /eligibility/check [post]
func (h *StudentHandler) CheckEligibility(c *gin.Context) {
	var req dto.EligibilityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check payload"))
		return
	}

	verdict, err := h.service.CheckEligibility(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verdict, nil)
}
