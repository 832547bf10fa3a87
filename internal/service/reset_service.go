package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/repository"
	"github.com/noah-isme/placement-portal-api/pkg/config"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/mediahost"
	"github.com/noah-isme/placement-portal-api/pkg/tasks"
)

// academicYearPattern accepts tags of the form 2025-26.
var academicYearPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type resetStore interface {
	CountAll(ctx context.Context) (*models.ResetPreview, error)
	ExecuteWipe(ctx context.Context, academicYear, executedBy string) (*models.ResetCounts, []models.StudentPhotoRef, error)
	SaveResult(ctx context.Context, result *models.ResetResult) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type resetMetrics interface {
	RecordReset(outcome string)
}

type photoDeleter interface {
	Enabled() bool
	DeleteAsset(ctx context.Context, reference string) error
	DeleteFolder(ctx context.Context, reference string) error
}

var _ photoDeleter = (*mediahost.Client)(nil)

// ResetService orchestrates the academic-year reset: the advisory preview and
// the gated, irreversible execution. The database wipe happens in one
// transaction, then the external photo cleanup runs post-commit so that an
// unreachable media host can never roll back committed database work.
type ResetService struct {
	repo    resetStore
	users   userFinder
	audit   auditLogger
	cache   verdictCache
	media   photoDeleter
	runner  *tasks.Runner
	metrics resetMetrics
	cfg     config.ResetConfig
	logger  *zap.Logger

	// mu rejects overlapping resets within this process; the advisory lock in
	// the wipe transaction covers other processes.
	mu sync.Mutex
}

// NewResetService constructs the service.
func NewResetService(
	repo resetStore,
	users userFinder,
	audit auditLogger,
	cache verdictCache,
	media photoDeleter,
	metrics resetMetrics,
	cfg config.ResetConfig,
	logger *zap.Logger,
) *ResetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResetService{
		repo:    repo,
		users:   users,
		audit:   audit,
		cache:   cache,
		media:   media,
		runner:  tasks.NewRunner(tasks.RunnerConfig{Concurrency: cfg.CleanupConcurrency, Logger: logger}),
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

// Preview returns the consistent snapshot of everything a reset would touch.
func (s *ResetService) Preview(ctx context.Context) (*models.ResetPreview, error) {
	preview, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build reset preview")
	}
	return preview, nil
}

// Execute walks the gate sequence and, if all three gates pass, runs the wipe.
// Gate one validates the year tag and requires something to reset. Gate two
// requires the exact typed confirmation literal. Gate three re-verifies the
// acting super admin's password against a fresh database read. Failing any
// gate leaves the system untouched.
func (s *ResetService) Execute(ctx context.Context, req dto.ExecuteResetRequest, actor *models.JWTClaims) (*models.ResetResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleSuperAdmin {
		s.recordOutcome("denied")
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only a super admin may execute a reset")
	}

	if !s.mu.TryLock() {
		s.recordOutcome("rejected_concurrent")
		return nil, appErrors.ErrResetInProgress
	}
	defer s.mu.Unlock()

	// Gate one: year tag and non-empty workload.
	if !academicYearPattern.MatchString(req.AcademicYear) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year must look like 2025-26")
	}
	preview, err := s.Preview(ctx)
	if err != nil {
		return nil, err
	}
	if preview.IsNothingToReset() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to reset")
	}

	// Gate two: the confirmation literal must match exactly, no trimming.
	if req.Confirmation != "RESET "+req.AcademicYear {
		return nil, appErrors.Clone(appErrors.ErrValidation, "confirmation text does not match")
	}

	// Gate three: fresh password verification; the token alone is not enough.
	if err := s.verifyPassword(ctx, actor, req.Password); err != nil {
		s.recordOutcome("denied")
		return nil, err
	}

	// The wipe must not die with the client connection. Bound it by its own
	// timeout instead of the request context.
	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.executionTimeout())
	defer cancel()

	s.logger.Info("executing academic-year reset",
		zap.String("academic_year", req.AcademicYear),
		zap.String("executed_by", actor.UserID))

	counts, photos, err := s.repo.ExecuteWipe(execCtx, req.AcademicYear, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrResetLocked) {
			s.recordOutcome("rejected_concurrent")
			return nil, appErrors.ErrResetInProgress
		}
		s.recordOutcome("rolled_back")
		s.logger.Error("reset transaction rolled back", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, appErrors.ErrTransaction.Message)
	}

	s.cache.Invalidate(execCtx)

	result := &models.ResetResult{
		AcademicYear: req.AcademicYear,
		ExecutedBy:   actor.UserID,
		DBReset:      *counts,
		Cleanup:      s.cleanupPhotos(execCtx, photos),
		ExecutedAt:   time.Now().UTC(),
	}

	if err := s.repo.SaveResult(execCtx, result); err != nil {
		// The wipe is committed; losing the artifact is reportable but not
		// reversible.
		s.logger.Error("failed to persist reset result", zap.Error(err))
	}

	s.recordOutcome("completed")
	s.logger.Info("academic-year reset completed",
		zap.String("academic_year", req.AcademicYear),
		zap.Int64("students_deactivated", counts.StudentsDeactivated),
		zap.Int64("ranges_disabled", counts.RangesDisabled),
		zap.Int64("photos_deleted", result.Cleanup.Deleted),
		zap.Int64("photos_failed", result.Cleanup.Failed))
	return result, nil
}

func (s *ResetService) verifyPassword(ctx context.Context, actor *models.JWTClaims, password string) error {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.auditDenied(ctx, actor)
			return appErrors.ErrAuthentication
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify password")
	}
	if !user.Active || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.auditDenied(ctx, actor)
		return appErrors.ErrAuthentication
	}
	return nil
}

func (s *ResetService) auditDenied(ctx context.Context, actor *models.JWTClaims) {
	log := &models.AuditLog{
		UserID:    &actor.UserID,
		Action:    models.AuditActionResetDenied,
		Resource:  "reset",
		IPAddress: "system",
		UserAgent: "reset-executor",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Error("failed to record reset denial", zap.Error(err))
	}
}

// cleanupPhotos deletes the collected photo assets and their folders on the
// media host with bounded concurrency. Failures are counted, never retried
// here, and never fail the reset.
func (s *ResetService) cleanupPhotos(ctx context.Context, photos []models.StudentPhotoRef) models.CleanupSummary {
	summary := models.CleanupSummary{}
	if len(photos) == 0 || s.media == nil || !s.media.Enabled() {
		return summary
	}

	cleanupCtx, cancel := context.WithTimeout(ctx, s.cleanupTimeout())
	defer cancel()

	batch := make([]tasks.Task, 0, len(photos))
	folders := make(map[string]struct{})
	for _, photo := range photos {
		ref := photo.PhotoURL
		batch = append(batch, tasks.Task{
			ID:   photo.StudentID,
			Kind: "photo_delete",
			Run: func(ctx context.Context) error {
				return s.media.DeleteAsset(ctx, ref)
			},
		})
		if photo.PhotoFolder != nil && *photo.PhotoFolder != "" {
			folders[*photo.PhotoFolder] = struct{}{}
		}
	}

	for _, result := range s.runner.Run(cleanupCtx, batch) {
		if result.Failed() {
			summary.Failed++
		} else {
			summary.Deleted++
		}
	}

	for folder := range folders {
		if err := s.media.DeleteFolder(cleanupCtx, folder); err != nil {
			s.logger.Warn("failed to delete photo folder", zap.String("folder", folder), zap.Error(err))
			continue
		}
		summary.FoldersDeleted++
	}
	return summary
}

func (s *ResetService) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordReset(outcome)
	}
}

func (s *ResetService) executionTimeout() time.Duration {
	if s.cfg.ExecutionTimeout > 0 {
		return s.cfg.ExecutionTimeout
	}
	return 10 * time.Minute
}

func (s *ResetService) cleanupTimeout() time.Duration {
	if s.cfg.CleanupTimeout > 0 {
		return s.cfg.CleanupTimeout
	}
	return 5 * time.Minute
}
