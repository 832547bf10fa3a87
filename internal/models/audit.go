package models

import "time"

// AuditAction constants represent actions to be logged. audit_logs is the
// immutable compliance trail; it is distinct from activity_logs (the
// user-facing feed wiped each academic year) and is never wiped.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionRangeCreate     = "RANGE_CREATE"
	AuditActionRangeUpdate     = "RANGE_UPDATE"
	AuditActionRangeDisable    = "RANGE_DISABLE"
	AuditActionRangeDelete     = "RANGE_DELETE"
	AuditActionRangeExport     = "RANGE_EXPORT"
	AuditActionResetPreview    = "RESET_PREVIEW"
	AuditActionResetExecute    = "RESET_EXECUTE"
	AuditActionResetDenied     = "RESET_DENIED"
	AuditActionStudentRegister = "STUDENT_REGISTER"
)

// AuditLog represents an append-only audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditLogFilter narrows audit listings.
type AuditLogFilter struct {
	Action   string
	Resource string
	UserID   string
	Page     int
	PageSize int
}
