package models

import "time"

// ResetStage enumerates the academic-year reset state machine. The flow is
// linear: Review -> Confirming -> Verifying -> Executing, ending in Completed
// or RolledBack. RolledBack leaves no partial artifacts behind.
type ResetStage string

const (
	ResetStageReview     ResetStage = "REVIEW"
	ResetStageConfirming ResetStage = "CONFIRMING"
	ResetStageVerifying  ResetStage = "VERIFYING"
	ResetStageExecuting  ResetStage = "EXECUTING"
	ResetStageCompleted  ResetStage = "COMPLETED"
	ResetStageRolledBack ResetStage = "ROLLED_BACK"
)

// ResetPreview is a point-in-time, read-only count of everything the reset
// would touch. It is advisory: the executor always operates on rows present at
// execution time, not on these numbers.
type ResetPreview struct {
	Jobs               int64 `json:"jobs"`
	JobApplications    int64 `json:"job_applications"`
	JobDrives          int64 `json:"job_drives"`
	JobRequests        int64 `json:"job_requests"`
	Notifications      int64 `json:"notifications"`
	AdminNotifications int64 `json:"admin_notifications"`
	ActivityLogs       int64 `json:"activity_logs"`
	WhitelistRequests  int64 `json:"whitelist_requests"`
	DeletedJobs        int64 `json:"deleted_jobs"`

	ActiveRanges   int64 `json:"active_prn_ranges"`
	ActiveStudents int64 `json:"active_students"`
	StudentPhotos  int64 `json:"student_photos"`

	GeneratedAt time.Time `json:"generated_at"`
}

// IsNothingToReset is true iff every delete category is zero AND no PRN range
// is active AND no photo reference remains. Active student accounts alone do
// not make a reset meaningful.
func (p *ResetPreview) IsNothingToReset() bool {
	deleteTotal := p.Jobs + p.JobApplications + p.JobDrives + p.JobRequests +
		p.Notifications + p.AdminNotifications + p.ActivityLogs +
		p.WhitelistRequests + p.DeletedJobs
	return deleteTotal == 0 && p.ActiveRanges == 0 && p.StudentPhotos == 0
}

// ResetCounts holds the rows actually affected by a committed wipe.
type ResetCounts struct {
	JobsDeleted               int64 `json:"jobs_deleted"`
	JobApplicationsDeleted    int64 `json:"job_applications_deleted"`
	JobDrivesDeleted          int64 `json:"job_drives_deleted"`
	JobRequestsDeleted        int64 `json:"job_requests_deleted"`
	NotificationsDeleted      int64 `json:"notifications_deleted"`
	AdminNotificationsDeleted int64 `json:"admin_notifications_deleted"`
	ActivityLogsDeleted       int64 `json:"activity_logs_deleted"`
	WhitelistRequestsDeleted  int64 `json:"whitelist_requests_deleted"`
	DeletedJobsPurged         int64 `json:"deleted_jobs_purged"`
	RangesDisabled            int64 `json:"prn_ranges_disabled"`
	StudentsDeactivated       int64 `json:"students_deactivated"`
	PhotoRefsCleared          int64 `json:"photo_refs_cleared"`
}

// CleanupSummary aggregates the post-commit external photo deletion outcome.
// Failures here are non-fatal and reported for manual follow-up.
type CleanupSummary struct {
	Deleted        int64 `json:"deleted"`
	Failed         int64 `json:"failed"`
	FoldersDeleted int64 `json:"folders_deleted"`
}

// ResetResult is the persisted audit artifact of one completed reset.
// Immutable once written.
type ResetResult struct {
	ID           string      `db:"id" json:"id"`
	AcademicYear string      `db:"academic_year" json:"academic_year"`
	ExecutedBy   string      `db:"executed_by" json:"executed_by"`
	DBReset      ResetCounts `db:"-" json:"db_reset"`
	Cleanup      CleanupSummary `db:"-" json:"cleanup"`
	ExecutedAt   time.Time   `db:"executed_at" json:"executed_at"`
}
