package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

func newResetRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestResetRepositoryCountAll(t *testing.T) {
	db, mock, cleanup := newResetRepoMock(t)
	defer cleanup()

	repo := NewResetRepository(db)
	mock.ExpectBegin()
	for i, target := range deleteTargets {
		mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf("SELECT COUNT(*) FROM %s", target.table))).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(i + 1)))
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM prn_ranges WHERE is_enabled = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(40)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE photo_url IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectCommit()

	preview, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), preview.Jobs)
	require.Equal(t, int64(1), preview.JobApplications)
	require.Equal(t, int64(3), preview.ActiveRanges)
	require.Equal(t, int64(40), preview.ActiveStudents)
	require.Equal(t, int64(12), preview.StudentPhotos)
	require.False(t, preview.GeneratedAt.IsZero())
	require.False(t, preview.IsNothingToReset())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetRepositoryExecuteWipe(t *testing.T) {
	db, mock, cleanup := newResetRepoMock(t)
	defer cleanup()

	repo := NewResetRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_xact_lock($1)")).
		WithArgs(resetLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_xact_lock"}).AddRow(true))
	for _, target := range deleteTargets {
		mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf("DELETE FROM %s", target.table))).
			WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE prn_ranges SET is_enabled = FALSE, disabled_reason = $1, academic_year_tag = $1")).
		WithArgs("2025-26", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 40))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, photo_url, photo_folder FROM students WHERE photo_url IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "photo_url", "photo_folder"}).
			AddRow("stu-1", "photos/stu-1.jpg", "photos/college-a").
			AddRow("stu-2", "photos/stu-2.jpg", nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET photo_url = NULL, photo_folder = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	counts, photos, err := repo.ExecuteWipe(context.Background(), "2025-26", "admin-1")
	require.NoError(t, err)
	require.Equal(t, int64(5), counts.RangesDisabled)
	require.Equal(t, int64(40), counts.StudentsDeactivated)
	require.Equal(t, int64(2), counts.PhotoRefsCleared)
	require.Len(t, photos, 2)
	require.Equal(t, "stu-1", photos[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetRepositoryExecuteWipeLocked(t *testing.T) {
	db, mock, cleanup := newResetRepoMock(t)
	defer cleanup()

	repo := NewResetRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_xact_lock($1)")).
		WithArgs(resetLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_xact_lock"}).AddRow(false))
	mock.ExpectRollback()

	_, _, err := repo.ExecuteWipe(context.Background(), "2025-26", "admin-1")
	require.ErrorIs(t, err, ErrResetLocked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetRepositoryExecuteWipeRollsBackOnAuditFailure(t *testing.T) {
	db, mock, cleanup := newResetRepoMock(t)
	defer cleanup()

	repo := NewResetRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_xact_lock($1)")).
		WithArgs(resetLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_xact_lock"}).AddRow(true))
	for _, target := range deleteTargets {
		mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf("DELETE FROM %s", target.table))).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE prn_ranges SET is_enabled = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, photo_url, photo_folder FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "photo_url", "photo_folder"}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET photo_url = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, _, err := repo.ExecuteWipe(context.Background(), "2025-26", "admin-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "append reset audit")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetRepositorySaveResult(t *testing.T) {
	db, mock, cleanup := newResetRepoMock(t)
	defer cleanup()

	repo := NewResetRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reset_results")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &models.ResetResult{AcademicYear: "2025-26", ExecutedBy: "admin-1"}
	require.NoError(t, repo.SaveResult(context.Background(), result))
	require.NotEmpty(t, result.ID)
	require.False(t, result.ExecutedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
