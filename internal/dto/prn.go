package dto

import "github.com/noah-isme/placement-portal-api/internal/models"

// CreatePRNRangeRequest describes a new interval or single-PRN admission.
// Exactly one of {range_start+range_end, single_prn} must be populated.
type CreatePRNRangeRequest struct {
	RangeStart  *string           `json:"range_start"`
	RangeEnd    *string           `json:"range_end"`
	SinglePRN   *string           `json:"single_prn"`
	Scope       models.RangeScope `json:"scope" validate:"required"`
	CollegeID   *string           `json:"college_id"`
	Description string            `json:"description"`
}

// UpdatePRNRangeRequest patches an existing range. Nil fields are untouched.
// Disabling requires a non-empty reason.
type UpdatePRNRangeRequest struct {
	Description    *string `json:"description"`
	IsEnabled      *bool   `json:"is_enabled"`
	DisabledReason *string `json:"disabled_reason"`
}

// PRNRangeFilter captures list query parameters.
type PRNRangeFilter struct {
	Scope           models.RangeScope
	CollegeID       string
	IncludeDisabled bool
	Limit           int
	Offset          int
}

// EligibilityCheckRequest asks whether a PRN may register under a college.
type EligibilityCheckRequest struct {
	PRN       string  `json:"prn" validate:"required"`
	CollegeID *string `json:"college_id"`
}
