package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/repository"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/export"
)

type prnStore interface {
	Create(ctx context.Context, rng *models.PRNRange) error
	GetByID(ctx context.Context, id string) (*models.PRNRange, error)
	List(ctx context.Context, filter models.PRNRangeFilter) ([]models.PRNRange, error)
	ListEnabledForCollege(ctx context.Context, collegeID *string) ([]models.PRNRange, error)
	Update(ctx context.Context, rng *models.PRNRange, actor models.Authority) error
	Delete(ctx context.Context, id string, actor models.Authority) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type verdictCache interface {
	GetVerdict(ctx context.Context, prn string, collegeID *string) (*models.EligibilityVerdict, bool)
	SetVerdict(ctx context.Context, prn string, collegeID *string, verdict *models.EligibilityVerdict)
	Invalidate(ctx context.Context)
}

// PRNService is the range registry plus the eligibility resolver. Every
// mutation re-validates authority, writes an audit entry and invalidates the
// verdict cache before returning.
type PRNService struct {
	repo   prnStore
	audit  auditLogger
	cache  verdictCache
	logger *zap.Logger
}

// NewPRNService constructs the service.
func NewPRNService(repo prnStore, audit auditLogger, cache verdictCache, logger *zap.Logger) *PRNService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PRNService{repo: repo, audit: audit, cache: cache, logger: logger}
}

// AddRange validates and persists a new range on behalf of the actor.
func (s *PRNService) AddRange(ctx context.Context, req dto.CreatePRNRangeRequest, actor *models.JWTClaims) (*models.PRNRange, error) {
	authority, err := s.actorAuthority(actor)
	if err != nil {
		return nil, err
	}

	rng := &models.PRNRange{
		RangeStart:         normalizeRef(req.RangeStart),
		RangeEnd:           normalizeRef(req.RangeEnd),
		SinglePRN:          normalizeRef(req.SinglePRN),
		Scope:              req.Scope,
		CollegeID:          normalizeRef(req.CollegeID),
		CreatedByAuthority: authority,
		CreatedBy:          actor.UserID,
		IsEnabled:          true,
		Description:        strings.TrimSpace(req.Description),
	}

	if err := validateRangeForm(rng); err != nil {
		return nil, err
	}

	switch rng.Scope {
	case models.RangeScopeGlobal:
		// Only the top of the hierarchy may admit identifiers everywhere.
		if authority != models.AuthoritySuperAdmin {
			return nil, appErrors.Clone(appErrors.ErrAuthority, "placement officers cannot create global ranges")
		}
		rng.CollegeID = nil
	case models.RangeScopeCollege:
		if rng.CollegeID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "college_id is required for college scope")
		}
		if authority == models.AuthorityPlacementOfficer {
			if actor.CollegeID == nil || *actor.CollegeID != *rng.CollegeID {
				return nil, appErrors.Clone(appErrors.ErrAuthority, "placement officers may only target their own college")
			}
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid scope")
	}

	if err := s.repo.Create(ctx, rng); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create range")
	}
	s.cache.Invalidate(ctx)
	if err := s.emitAudit(ctx, actor, models.AuditActionRangeCreate, rng.ID, rangeSummary(rng)); err != nil {
		return rng, err
	}
	return rng, nil
}

// UpdateRange patches a range under the authority precedence rules. Disabling
// requires a non-empty reason; enabling clears the previous reason.
func (s *PRNService) UpdateRange(ctx context.Context, id string, patch dto.UpdatePRNRangeRequest, actor *models.JWTClaims) (*models.PRNRange, error) {
	authority, err := s.actorAuthority(actor)
	if err != nil {
		return nil, err
	}

	rng, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load range")
	}
	if !authority.CanManage(rng.CreatedByAuthority) {
		return nil, appErrors.Clone(appErrors.ErrAuthority, "range is owned by a higher authority")
	}

	action := models.AuditActionRangeUpdate
	if patch.Description != nil {
		rng.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.IsEnabled != nil {
		switch {
		case !*patch.IsEnabled && rng.IsEnabled:
			reason := ""
			if patch.DisabledReason != nil {
				reason = strings.TrimSpace(*patch.DisabledReason)
			}
			if reason == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, "disabled_reason is required when disabling a range")
			}
			rng.IsEnabled = false
			rng.DisabledReason = &reason
			action = models.AuditActionRangeDisable
		case *patch.IsEnabled && !rng.IsEnabled:
			rng.IsEnabled = true
			rng.DisabledReason = nil
		}
	}

	if err := s.repo.Update(ctx, rng, authority); err != nil {
		return nil, s.mapWriteError(err)
	}
	s.cache.Invalidate(ctx)
	if err := s.emitAudit(ctx, actor, action, rng.ID, rangeSummary(rng)); err != nil {
		return rng, err
	}
	return rng, nil
}

// DeleteRange removes a range outside the reset flow.
func (s *PRNService) DeleteRange(ctx context.Context, id string, actor *models.JWTClaims) error {
	authority, err := s.actorAuthority(actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, authority); err != nil {
		return s.mapWriteError(err)
	}
	s.cache.Invalidate(ctx)
	return s.emitAudit(ctx, actor, models.AuditActionRangeDelete, id, "")
}

// ListRanges returns registry rows newest-first.
func (s *PRNService) ListRanges(ctx context.Context, filter dto.PRNRangeFilter) ([]models.PRNRange, error) {
	records, err := s.repo.List(ctx, models.PRNRangeFilter{
		Scope:           filter.Scope,
		CollegeID:       filter.CollegeID,
		IncludeDisabled: filter.IncludeDisabled,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ranges")
	}
	return records, nil
}

// ExportRanges renders the registry listing as CSV. The deterministic list
// ordering keeps repeated exports stable.
func (s *PRNService) ExportRanges(ctx context.Context, filter dto.PRNRangeFilter) ([]byte, error) {
	records, err := s.ListRanges(ctx, filter)
	if err != nil {
		return nil, err
	}
	headers := []string{"id", "kind", "value", "scope", "college_id", "authority", "enabled", "disabled_reason", "academic_year", "description", "created_at"}
	rows := make([]map[string]string, 0, len(records))
	for i := range records {
		rng := &records[i]
		kind, value := "single", deref(rng.SinglePRN)
		if rng.IsInterval() {
			kind = "interval"
			value = fmt.Sprintf("%s-%s", deref(rng.RangeStart), deref(rng.RangeEnd))
		}
		rows = append(rows, map[string]string{
			"id":              rng.ID,
			"kind":            kind,
			"value":           value,
			"scope":           string(rng.Scope),
			"college_id":      deref(rng.CollegeID),
			"authority":       string(rng.CreatedByAuthority),
			"enabled":         strconv.FormatBool(rng.IsEnabled),
			"disabled_reason": deref(rng.DisabledReason),
			"academic_year":   deref(rng.AcademicYearTag),
			"description":     rng.Description,
			"created_at":      rng.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return export.NewCSVExporter().Render(export.Dataset{Headers: headers, Rows: rows})
}

// Resolve answers whether the identifier may register under the given
// college. Matching is existential: the first enabled range covering the
// identifier (globally or for the caller's college) admits it, and disabled
// ranges never match. The verdict is pure over current registry state; cached
// verdicts are keyed by a version bumped on every mutation.
func (s *PRNService) Resolve(ctx context.Context, identifier string, collegeID *string) (*models.EligibilityVerdict, error) {
	prn := strings.TrimSpace(identifier)
	if prn == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "prn is required")
	}
	collegeID = normalizeRef(collegeID)

	if verdict, ok := s.cache.GetVerdict(ctx, prn, collegeID); ok {
		return verdict, nil
	}

	ranges, err := s.repo.ListEnabledForCollege(ctx, collegeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan ranges")
	}

	verdict := &models.EligibilityVerdict{}
	for i := range ranges {
		if rangeMatches(&ranges[i], prn) {
			verdict.Matched = true
			verdict.MatchingRangeID = ranges[i].ID
			verdict.Scope = ranges[i].Scope
			verdict.IsEnabled = ranges[i].IsEnabled
			break
		}
	}

	s.cache.SetVerdict(ctx, prn, collegeID, verdict)
	return verdict, nil
}

func (s *PRNService) actorAuthority(actor *models.JWTClaims) (models.Authority, error) {
	if actor == nil {
		return "", appErrors.ErrUnauthorized
	}
	authority, ok := models.AuthorityForRole(actor.Role)
	if !ok {
		return "", appErrors.ErrForbidden
	}
	return authority, nil
}

func (s *PRNService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrAuthorityDenied):
		return appErrors.Clone(appErrors.ErrAuthority, "range is owned by a higher authority")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.ErrNotFound
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write range")
	}
}

// emitAudit records the mutation. The write is best effort in the sense that
// the mutation is already persisted, but a failure is still surfaced so the
// caller knows the trail is incomplete.
func (s *PRNService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, rangeID, summary string) error {
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "prn_range",
		ResourceID: &rangeID,
		IPAddress:  "system",
		UserAgent:  "prn-registry",
	}
	if summary != "" {
		log.NewValues = []byte(summary)
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Error("failed to record range audit", zap.Error(err), zap.String("action", action))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "range saved but audit write failed")
	}
	return nil
}

func validateRangeForm(rng *models.PRNRange) error {
	hasInterval := rng.RangeStart != nil || rng.RangeEnd != nil
	hasSingle := rng.SinglePRN != nil

	switch {
	case hasInterval && hasSingle:
		return appErrors.Clone(appErrors.ErrValidation, "range must be either an interval or a single PRN, not both")
	case !hasInterval && !hasSingle:
		return appErrors.Clone(appErrors.ErrValidation, "range requires an interval or a single PRN")
	case hasInterval && (rng.RangeStart == nil || rng.RangeEnd == nil):
		return appErrors.Clone(appErrors.ErrValidation, "interval requires both range_start and range_end")
	case hasInterval && comparePRN(*rng.RangeStart, *rng.RangeEnd) > 0:
		return appErrors.Clone(appErrors.ErrValidation, "range_start must not exceed range_end")
	}
	return nil
}

func rangeMatches(rng *models.PRNRange, prn string) bool {
	if !rng.IsEnabled {
		return false
	}
	if rng.SinglePRN != nil {
		return prn == strings.TrimSpace(*rng.SinglePRN)
	}
	if !rng.IsInterval() {
		return false
	}
	return comparePRN(prn, *rng.RangeStart) >= 0 && comparePRN(prn, *rng.RangeEnd) <= 0
}

// comparePRN orders two identifiers numerically when both parse as unsigned
// integers, lexicographically otherwise. PRNs are an opaque string/number
// hybrid; mixed forms fall back to string ordering.
func comparePRN(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func rangeSummary(rng *models.PRNRange) string {
	if rng.SinglePRN != nil {
		return fmt.Sprintf(`{"single_prn":%q,"scope":%q,"enabled":%t}`, *rng.SinglePRN, rng.Scope, rng.IsEnabled)
	}
	return fmt.Sprintf(`{"range":[%q,%q],"scope":%q,"enabled":%t}`,
		deref(rng.RangeStart), deref(rng.RangeEnd), rng.Scope, rng.IsEnabled)
}

func normalizeRef(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	result := trimmed
	return &result
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
