package models

import "time"

// RangeScope constrains where a PRN range applies.
type RangeScope string

const (
	// RangeScopeGlobal admits the identifier at every college.
	RangeScopeGlobal RangeScope = "GLOBAL"
	// RangeScopeCollege admits the identifier at one college only.
	RangeScopeCollege RangeScope = "COLLEGE"
)

// PRNRange represents either a contiguous [RangeStart, RangeEnd] interval of
// registration numbers or a single admitted PRN. Exactly one of the two forms
// is populated. Ranges are disabled, never hard-deleted, by the academic-year
// reset; explicit deletion is reserved for the owning authority.
type PRNRange struct {
	ID                 string     `db:"id" json:"id"`
	RangeStart         *string    `db:"range_start" json:"range_start,omitempty"`
	RangeEnd           *string    `db:"range_end" json:"range_end,omitempty"`
	SinglePRN          *string    `db:"single_prn" json:"single_prn,omitempty"`
	Scope              RangeScope `db:"scope" json:"scope"`
	CollegeID          *string    `db:"college_id" json:"college_id,omitempty"`
	CreatedByAuthority Authority  `db:"created_by_authority" json:"created_by_authority"`
	CreatedBy          string     `db:"created_by" json:"created_by"`
	IsEnabled          bool       `db:"is_enabled" json:"is_enabled"`
	DisabledReason     *string    `db:"disabled_reason" json:"disabled_reason,omitempty"`
	AcademicYearTag    *string    `db:"academic_year_tag" json:"academic_year_tag,omitempty"`
	Description        string     `db:"description" json:"description"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// IsInterval reports whether the range is the interval form.
func (r *PRNRange) IsInterval() bool {
	return r.RangeStart != nil && r.RangeEnd != nil
}

// PRNRangeFilter narrows registry listings.
type PRNRangeFilter struct {
	Scope           RangeScope
	CollegeID       string
	IncludeDisabled bool
	Limit           int
	Offset          int
}

// EligibilityVerdict is the ephemeral result of resolving one identifier.
// It is recomputed per request and never persisted.
type EligibilityVerdict struct {
	Matched         bool       `json:"matched"`
	MatchingRangeID string     `json:"matching_range_id,omitempty"`
	Scope           RangeScope `json:"scope,omitempty"`
	IsEnabled       bool       `json:"is_enabled,omitempty"`
}
