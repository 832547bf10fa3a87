package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// ErrAuthorityDenied signals that a write was blocked by the authority
// predicate evaluated inside the UPDATE/DELETE statement itself. Checking at
// write time closes the window where authority could change between a prior
// read and the write.
var ErrAuthorityDenied = errors.New("authority denied for range")

// PRNRepository is the authoritative store of PRN ranges.
type PRNRepository struct {
	db *sqlx.DB
}

// NewPRNRepository constructs the repository.
func NewPRNRepository(db *sqlx.DB) *PRNRepository {
	return &PRNRepository{db: db}
}

const prnRangeColumns = `id, range_start, range_end, single_prn, scope, college_id,
       created_by_authority, created_by, is_enabled, disabled_reason, academic_year_tag,
       description, created_at, updated_at`

// Create persists a new range.
func (r *PRNRepository) Create(ctx context.Context, rng *models.PRNRange) error {
	if rng.ID == "" {
		rng.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rng.CreatedAt.IsZero() {
		rng.CreatedAt = now
	}
	rng.UpdatedAt = now
	const query = `INSERT INTO prn_ranges
	(id, range_start, range_end, single_prn, scope, college_id, created_by_authority, created_by, is_enabled, disabled_reason, academic_year_tag, description, created_at, updated_at)
	VALUES (:id, :range_start, :range_end, :single_prn, :scope, :college_id, :created_by_authority, :created_by, :is_enabled, :disabled_reason, :academic_year_tag, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rng); err != nil {
		return fmt.Errorf("create prn range: %w", err)
	}
	return nil
}

// GetByID retrieves one range row.
func (r *PRNRepository) GetByID(ctx context.Context, id string) (*models.PRNRange, error) {
	query := `SELECT ` + prnRangeColumns + ` FROM prn_ranges WHERE id = $1`
	var rng models.PRNRange
	if err := r.db.GetContext(ctx, &rng, query, id); err != nil {
		return nil, err
	}
	return &rng, nil
}

// List returns ranges newest-first. Ordering is by creation time descending
// with the id as tiebreaker, so pagination and exports are deterministic.
func (r *PRNRepository) List(ctx context.Context, filter models.PRNRangeFilter) ([]models.PRNRange, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + prnRangeColumns + ` FROM prn_ranges`)
	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 3)

	if !filter.IncludeDisabled {
		conditions = append(conditions, "is_enabled = TRUE")
	}
	if filter.Scope != "" {
		args = append(args, filter.Scope)
		conditions = append(conditions, fmt.Sprintf("scope = $%d", len(args)))
	}
	if filter.CollegeID != "" {
		args = append(args, filter.CollegeID)
		conditions = append(conditions, fmt.Sprintf("college_id = $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var records []models.PRNRange
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list prn ranges: %w", err)
	}
	return records, nil
}

// ListEnabledForCollege returns the enabled ranges a resolver must scan for
// the given college: every enabled global range plus the college's own.
// A nil collegeID scans global ranges only.
func (r *PRNRepository) ListEnabledForCollege(ctx context.Context, collegeID *string) ([]models.PRNRange, error) {
	query := `SELECT ` + prnRangeColumns + ` FROM prn_ranges
	WHERE is_enabled = TRUE AND (scope = $1 OR ($2::text IS NOT NULL AND scope = $3 AND college_id = $2))
	ORDER BY created_at DESC, id DESC`
	var records []models.PRNRange
	if err := r.db.SelectContext(ctx, &records, query, models.RangeScopeGlobal, collegeID, models.RangeScopeCollege); err != nil {
		return nil, fmt.Errorf("list enabled prn ranges: %w", err)
	}
	return records, nil
}

// Update writes the mutable fields of a range. The actor's authority is
// re-evaluated in the statement: a placement officer can only touch rows
// created by the officer class, while a super admin can touch anything.
// Conflicting concurrent edits resolve last-write-wins at the row level.
func (r *PRNRepository) Update(ctx context.Context, rng *models.PRNRange, actor models.Authority) error {
	const query = `UPDATE prn_ranges
	SET description = $2, is_enabled = $3, disabled_reason = $4, updated_at = $5
	WHERE id = $1 AND ($6 OR created_by_authority = $7)`
	res, err := r.db.ExecContext(ctx, query,
		rng.ID,
		rng.Description,
		rng.IsEnabled,
		rng.DisabledReason,
		time.Now().UTC(),
		actor == models.AuthoritySuperAdmin,
		models.AuthorityPlacementOfficer,
	)
	if err != nil {
		return fmt.Errorf("update prn range: %w", err)
	}
	return r.discriminate(ctx, rng.ID, res)
}

// Delete removes a range outside the reset flow, under the same write-time
// authority predicate as Update.
func (r *PRNRepository) Delete(ctx context.Context, id string, actor models.Authority) error {
	const query = `DELETE FROM prn_ranges
	WHERE id = $1 AND ($2 OR created_by_authority = $3)`
	res, err := r.db.ExecContext(ctx, query,
		id,
		actor == models.AuthoritySuperAdmin,
		models.AuthorityPlacementOfficer,
	)
	if err != nil {
		return fmt.Errorf("delete prn range: %w", err)
	}
	return r.discriminate(ctx, id, res)
}

// discriminate maps a zero-row write onto ErrNoRows (row gone) or
// ErrAuthorityDenied (row present, predicate refused).
func (r *PRNRepository) discriminate(ctx context.Context, id string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check prn range rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM prn_ranges WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("check prn range existence: %w", err)
	}
	if exists {
		return ErrAuthorityDenied
	}
	return sql.ErrNoRows
}
