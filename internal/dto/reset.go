package dto

import "github.com/noah-isme/placement-portal-api/internal/models"

// ExecuteResetRequest carries the three gate inputs for the academic-year
// reset: the year tag, the typed confirmation literal and the acting super
// admin's current password.
type ExecuteResetRequest struct {
	AcademicYear string `json:"academic_year" validate:"required"`
	Confirmation string `json:"confirmation" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

// ResetResultResponse reports the committed outcome of one reset.
type ResetResultResponse struct {
	ID           string                `json:"id"`
	AcademicYear string                `json:"academic_year"`
	Stage        models.ResetStage     `json:"stage"`
	DBReset      models.ResetCounts    `json:"db_reset"`
	Cleanup      models.CleanupSummary `json:"cleanup"`
	ExecutedAt   string                `json:"executed_at"`
}
