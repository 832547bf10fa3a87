package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type studentStore interface {
	Create(ctx context.Context, student *models.Student) error
	ExistsByPRN(ctx context.Context, prn string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type eligibilityResolver interface {
	Resolve(ctx context.Context, identifier string, collegeID *string) (*models.EligibilityVerdict, error)
}

type collegeStore interface {
	List(ctx context.Context) ([]models.College, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type eligibilityMetrics interface {
	RecordEligibilityCheck(matched bool)
}

// StudentService registers student accounts behind the PRN eligibility gate.
type StudentService struct {
	repo      studentStore
	colleges  collegeStore
	resolver  eligibilityResolver
	audit     auditLogger
	metrics   eligibilityMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentStore, colleges collegeStore, resolver eligibilityResolver, audit auditLogger, metrics eligibilityMetrics, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, colleges: colleges, resolver: resolver, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// ListColleges returns the college roster for registration forms.
func (s *StudentService) ListColleges(ctx context.Context) ([]models.College, error) {
	records, err := s.colleges.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list colleges")
	}
	return records, nil
}

// Register creates a student account. The PRN must fall inside an enabled
// range covering the student's college; anything else is a hard rejection with
// no account side effects.
func (s *StudentService) Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	prn := strings.TrimSpace(req.PRN)
	collegeID := strings.TrimSpace(req.CollegeID)
	if prn == "" || collegeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "prn and college_id are required")
	}

	if known, err := s.colleges.Exists(ctx, collegeID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check college")
	} else if !known {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown college")
	}

	verdict, err := s.resolver.Resolve(ctx, prn, &collegeID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordEligibilityCheck(verdict.Matched)
	}
	if !verdict.Matched {
		return nil, appErrors.ErrNotEligible
	}

	if taken, err := s.repo.ExistsByPRN(ctx, prn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prn uniqueness")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this PRN already exists")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if taken, err := s.repo.ExistsByEmail(ctx, email); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		PRN:          prn,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		CollegeID:    collegeID,
		Branch:       strings.TrimSpace(req.Branch),
		Active:       true,
		PhotoURL:     req.PhotoURL,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	log := &models.AuditLog{
		Action:     models.AuditActionStudentRegister,
		Resource:   "student",
		ResourceID: &student.ID,
		IPAddress:  "system",
		UserAgent:  "registration",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record registration audit", zap.Error(err), zap.String("student_id", student.ID))
	}
	return student, nil
}

// CheckEligibility resolves an identifier without creating anything.
func (s *StudentService) CheckEligibility(ctx context.Context, req dto.EligibilityCheckRequest) (*models.EligibilityVerdict, error) {
	verdict, err := s.resolver.Resolve(ctx, req.PRN, req.CollegeID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordEligibilityCheck(verdict.Matched)
	}
	return verdict, nil
}
