package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// ErrResetLocked signals that another reset holds the advisory lock. The
// caller rejects the attempt; resets are never queued behind one another.
var ErrResetLocked = errors.New("reset already in progress")

// resetLockKey is the advisory lock identifier shared by every reset
// transaction. pg_try_advisory_xact_lock releases it on commit or rollback.
const resetLockKey int64 = 7245_1129_03

// ResetRepository owns the academic-year reset SQL: the consistent preview
// snapshot and the single-transaction wipe.
type ResetRepository struct {
	db *sqlx.DB
}

// NewResetRepository constructs the repository.
func NewResetRepository(db *sqlx.DB) *ResetRepository {
	return &ResetRepository{db: db}
}

// deleteTargets enumerates the transactional tables wiped each cycle, in
// child-before-parent order so foreign keys never block the wipe.
var deleteTargets = []struct {
	table  string
	assign func(*models.ResetCounts, int64)
	count  func(*models.ResetPreview, int64)
}{
	{"job_applications", func(c *models.ResetCounts, n int64) { c.JobApplicationsDeleted = n }, func(p *models.ResetPreview, n int64) { p.JobApplications = n }},
	{"job_drives", func(c *models.ResetCounts, n int64) { c.JobDrivesDeleted = n }, func(p *models.ResetPreview, n int64) { p.JobDrives = n }},
	{"job_requests", func(c *models.ResetCounts, n int64) { c.JobRequestsDeleted = n }, func(p *models.ResetPreview, n int64) { p.JobRequests = n }},
	{"jobs", func(c *models.ResetCounts, n int64) { c.JobsDeleted = n }, func(p *models.ResetPreview, n int64) { p.Jobs = n }},
	{"notifications", func(c *models.ResetCounts, n int64) { c.NotificationsDeleted = n }, func(p *models.ResetPreview, n int64) { p.Notifications = n }},
	{"admin_notifications", func(c *models.ResetCounts, n int64) { c.AdminNotificationsDeleted = n }, func(p *models.ResetPreview, n int64) { p.AdminNotifications = n }},
	{"activity_logs", func(c *models.ResetCounts, n int64) { c.ActivityLogsDeleted = n }, func(p *models.ResetPreview, n int64) { p.ActivityLogs = n }},
	{"whitelist_requests", func(c *models.ResetCounts, n int64) { c.WhitelistRequestsDeleted = n }, func(p *models.ResetPreview, n int64) { p.WhitelistRequests = n }},
	{"deleted_jobs", func(c *models.ResetCounts, n int64) { c.DeletedJobsPurged = n }, func(p *models.ResetPreview, n int64) { p.DeletedJobs = n }},
}

// CountAll computes the reset preview in one repeatable-read, read-only
// transaction so every count reflects the same snapshot. The result is
// advisory: execution recounts at its own time.
func (r *ResetRepository) CountAll(ctx context.Context) (*models.ResetPreview, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin preview tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	preview := &models.ResetPreview{}
	for _, target := range deleteTargets {
		var n int64
		if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+target.table); err != nil {
			return nil, fmt.Errorf("count %s: %w", target.table, err)
		}
		target.count(preview, n)
	}

	if err := tx.GetContext(ctx, &preview.ActiveRanges, `SELECT COUNT(*) FROM prn_ranges WHERE is_enabled = TRUE`); err != nil {
		return nil, fmt.Errorf("count active ranges: %w", err)
	}
	if err := tx.GetContext(ctx, &preview.ActiveStudents, `SELECT COUNT(*) FROM students WHERE active = TRUE`); err != nil {
		return nil, fmt.Errorf("count active students: %w", err)
	}
	if err := tx.GetContext(ctx, &preview.StudentPhotos, `SELECT COUNT(*) FROM students WHERE photo_url IS NOT NULL`); err != nil {
		return nil, fmt.Errorf("count student photos: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit preview tx: %w", err)
	}

	preview.GeneratedAt = time.Now().UTC()
	return preview, nil
}

// ExecuteWipe runs the irreversible cycle-close sequence in one transaction:
// delete the transactional tables, disable every enabled range with the year
// as reason, deactivate student accounts, collect then clear photo
// references, and append the reset audit row. Any failure rolls the whole
// transaction back; the audit row is part of the correctness contract, so its
// failure aborts the wipe too. The returned photo references feed the
// post-commit external cleanup.
func (r *ResetRepository) ExecuteWipe(ctx context.Context, academicYear, executedBy string) (*models.ResetCounts, []models.StudentPhotoRef, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin reset tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var locked bool
	if err := tx.GetContext(ctx, &locked, `SELECT pg_try_advisory_xact_lock($1)`, resetLockKey); err != nil {
		return nil, nil, fmt.Errorf("acquire reset lock: %w", err)
	}
	if !locked {
		return nil, nil, ErrResetLocked
	}

	now := time.Now().UTC()
	counts := &models.ResetCounts{}

	for _, target := range deleteTargets {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+target.table)
		if err != nil {
			return nil, nil, fmt.Errorf("wipe %s: %w", target.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, nil, fmt.Errorf("wipe %s rows: %w", target.table, err)
		}
		target.assign(counts, n)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE prn_ranges SET is_enabled = FALSE, disabled_reason = $1, academic_year_tag = $1, updated_at = $2 WHERE is_enabled = TRUE`,
		academicYear, now)
	if err != nil {
		return nil, nil, fmt.Errorf("disable prn ranges: %w", err)
	}
	if counts.RangesDisabled, err = res.RowsAffected(); err != nil {
		return nil, nil, fmt.Errorf("disable prn ranges rows: %w", err)
	}

	res, err = tx.ExecContext(ctx, `UPDATE students SET active = FALSE, updated_at = $1 WHERE active = TRUE`, now)
	if err != nil {
		return nil, nil, fmt.Errorf("deactivate students: %w", err)
	}
	if counts.StudentsDeactivated, err = res.RowsAffected(); err != nil {
		return nil, nil, fmt.Errorf("deactivate students rows: %w", err)
	}

	var photos []models.StudentPhotoRef
	if err := tx.SelectContext(ctx, &photos,
		`SELECT id, photo_url, photo_folder FROM students WHERE photo_url IS NOT NULL`); err != nil {
		return nil, nil, fmt.Errorf("collect photo refs: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE students SET photo_url = NULL, photo_folder = NULL, updated_at = $1 WHERE photo_url IS NOT NULL`, now)
	if err != nil {
		return nil, nil, fmt.Errorf("clear photo refs: %w", err)
	}
	if counts.PhotoRefsCleared, err = res.RowsAffected(); err != nil {
		return nil, nil, fmt.Errorf("clear photo refs rows: %w", err)
	}

	summary, err := json.Marshal(counts)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal reset counts: %w", err)
	}
	resource := "reset"
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.NewString(), executedBy, models.AuditActionResetExecute, resource, academicYear, summary, "system", "reset-executor", now,
	); err != nil {
		return nil, nil, fmt.Errorf("append reset audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit reset tx: %w", err)
	}
	return counts, photos, nil
}

// SaveResult persists the immutable reset artifact, including the external
// cleanup outcome. Runs after commit because the cleanup summary only exists
// once the post-commit tasks have finished.
func (r *ResetRepository) SaveResult(ctx context.Context, result *models.ResetResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.ExecutedAt.IsZero() {
		result.ExecutedAt = time.Now().UTC()
	}
	dbReset, err := json.Marshal(result.DBReset)
	if err != nil {
		return fmt.Errorf("marshal db reset counts: %w", err)
	}
	cleanup, err := json.Marshal(result.Cleanup)
	if err != nil {
		return fmt.Errorf("marshal cleanup summary: %w", err)
	}
	const query = `INSERT INTO reset_results (id, academic_year, executed_by, db_reset, cleanup, executed_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, result.ID, result.AcademicYear, result.ExecutedBy, dbReset, cleanup, result.ExecutedAt); err != nil {
		return fmt.Errorf("save reset result: %w", err)
	}
	return nil
}
