package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

// PRNHandler exposes the range registry and the eligibility check.
type PRNHandler struct {
	service *service.PRNService
}

// NewPRNHandler creates a new handler.
func NewPRNHandler(svc *service.PRNService) *PRNHandler {
	return &PRNHandler{service: svc}
}

// Create godoc
// @Summary Create PRN range
// @Description Register a new interval or single-PRN admission
// @Tags Ranges
// @Accept json
// @Produce json
// @Param payload body dto.CreatePRNRangeRequest true "Range payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /ranges [post]
func (h *PRNHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreatePRNRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid range payload"))
		return
	}

	rng, err := h.service.AddRange(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rng)
}

// Update godoc
// @Summary Update PRN range
// @Description Patch description or enabled state; disabling requires a reason
// @Tags Ranges
// @Accept json
// @Produce json
// @Param id path string true "Range ID"
// @Param payload body dto.UpdatePRNRangeRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /ranges/{id} [patch]
func (h *PRNHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdatePRNRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid patch payload"))
		return
	}

	rng, err := h.service.UpdateRange(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rng, nil)
}

// Delete godoc
// @Summary Delete PRN range
// @Description Remove a range outside the reset flow
// @Tags Ranges
// @Produce json
// @Param id path string true "Range ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /ranges/{id} [delete]
func (h *PRNHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteRange(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List PRN ranges
// @Description List registry entries newest-first
// @Tags Ranges
// @Produce json
// @Param scope query string false "GLOBAL or COLLEGE"
// @Param college_id query string false "College filter"
// @Param include_disabled query bool false "Include disabled ranges"
// @Success 200 {object} response.Envelope
// @Router /ranges [get]
func (h *PRNHandler) List(c *gin.Context) {
	records, err := h.service.ListRanges(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Export godoc
// @Summary Export PRN ranges
// @Description Download the registry listing as CSV
// @Tags Ranges
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Router /ranges/export [get]
func (h *PRNHandler) Export(c *gin.Context) {
	payload, err := h.service.ExportRanges(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "prn-ranges-" + time.Now().UTC().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

func filterFromQuery(c *gin.Context) dto.PRNRangeFilter {
	includeDisabled, _ := strconv.ParseBool(c.Query("include_disabled"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return dto.PRNRangeFilter{
		Scope:           models.RangeScope(c.Query("scope")),
		CollegeID:       c.Query("college_id"),
		IncludeDisabled: includeDisabled,
		Limit:           limit,
		Offset:          offset,
	}
}
