package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/repository"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type prnStoreStub struct {
	ranges     map[string]*models.PRNRange
	createErr  error
	updateErr  error
	deleteErr  error
	listCalled int
}

func newPRNStoreStub() *prnStoreStub {
	return &prnStoreStub{ranges: make(map[string]*models.PRNRange)}
}

func (s *prnStoreStub) Create(ctx context.Context, rng *models.PRNRange) error {
	if s.createErr != nil {
		return s.createErr
	}
	if rng.ID == "" {
		rng.ID = fmt.Sprintf("rng-%d", len(s.ranges)+1)
	}
	copy := *rng
	s.ranges[rng.ID] = &copy
	return nil
}

func (s *prnStoreStub) GetByID(ctx context.Context, id string) (*models.PRNRange, error) {
	if rng, ok := s.ranges[id]; ok {
		copy := *rng
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *prnStoreStub) List(ctx context.Context, filter models.PRNRangeFilter) ([]models.PRNRange, error) {
	result := make([]models.PRNRange, 0, len(s.ranges))
	for _, rng := range s.ranges {
		if !filter.IncludeDisabled && !rng.IsEnabled {
			continue
		}
		result = append(result, *rng)
	}
	return result, nil
}

func (s *prnStoreStub) ListEnabledForCollege(ctx context.Context, collegeID *string) ([]models.PRNRange, error) {
	s.listCalled++
	result := make([]models.PRNRange, 0, len(s.ranges))
	for _, rng := range s.ranges {
		if !rng.IsEnabled {
			continue
		}
		if rng.Scope == models.RangeScopeGlobal {
			result = append(result, *rng)
			continue
		}
		if collegeID != nil && rng.CollegeID != nil && *rng.CollegeID == *collegeID {
			result = append(result, *rng)
		}
	}
	return result, nil
}

func (s *prnStoreStub) Update(ctx context.Context, rng *models.PRNRange, actor models.Authority) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.ranges[rng.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *rng
	s.ranges[rng.ID] = &copy
	return nil
}

func (s *prnStoreStub) Delete(ctx context.Context, id string, actor models.Authority) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.ranges[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.ranges, id)
	return nil
}

type auditStub struct {
	logs []*models.AuditLog
	err  error
}

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.logs = append(s.logs, log)
	return nil
}

type cacheStub struct {
	verdicts    map[string]*models.EligibilityVerdict
	invalidated int
}

func newCacheStub() *cacheStub {
	return &cacheStub{verdicts: make(map[string]*models.EligibilityVerdict)}
}

func (s *cacheStub) key(prn string, collegeID *string) string {
	college := "global"
	if collegeID != nil {
		college = *collegeID
	}
	return college + ":" + prn
}

func (s *cacheStub) GetVerdict(ctx context.Context, prn string, collegeID *string) (*models.EligibilityVerdict, bool) {
	v, ok := s.verdicts[s.key(prn, collegeID)]
	return v, ok
}

func (s *cacheStub) SetVerdict(ctx context.Context, prn string, collegeID *string, verdict *models.EligibilityVerdict) {
	s.verdicts[s.key(prn, collegeID)] = verdict
}

func (s *cacheStub) Invalidate(ctx context.Context) {
	s.invalidated++
	s.verdicts = make(map[string]*models.EligibilityVerdict)
}

func superClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin, Email: "admin@example.com"}
}

func officerClaims(college string) *models.JWTClaims {
	return &models.JWTClaims{UserID: "officer-1", Role: models.RolePlacementOfficer, Email: "officer@example.com", CollegeID: &college}
}

func newTestPRNService() (*PRNService, *prnStoreStub, *auditStub, *cacheStub) {
	store := newPRNStoreStub()
	audit := &auditStub{}
	cache := newCacheStub()
	return NewPRNService(store, audit, cache, nil), store, audit, cache
}

func ref(s string) *string { return &s }

func TestComparePRN(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1000", "1999", -1},
		{"1999", "1000", 1},
		{"1500", "1500", 0},
		{"999", "1000", -1},  // numeric, not lexicographic
		{"A100", "A099", 1},  // lexicographic fallback
		{"100", "A100", -1},  // mixed forms compare as strings
		{" 1000", "1000", 0}, // whitespace is trimmed first
	}
	for _, tt := range tests {
		got := comparePRN(tt.a, tt.b)
		switch {
		case tt.want < 0:
			require.Negative(t, got, "comparePRN(%q, %q)", tt.a, tt.b)
		case tt.want > 0:
			require.Positive(t, got, "comparePRN(%q, %q)", tt.a, tt.b)
		default:
			require.Zero(t, got, "comparePRN(%q, %q)", tt.a, tt.b)
		}
	}
}

func TestAddRangeAuthorityRules(t *testing.T) {
	svc, _, _, _ := newTestPRNService()

	// Placement officers can never admit identifiers globally.
	_, err := svc.AddRange(context.Background(), dto.CreatePRNRangeRequest{
		RangeStart: ref("1000"), RangeEnd: ref("1999"),
		Scope: models.RangeScopeGlobal,
	}, officerClaims("college-a"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAuthority.Code, appErrors.FromError(err).Code)

	// Nor target a college they do not administer.
	_, err = svc.AddRange(context.Background(), dto.CreatePRNRangeRequest{
		RangeStart: ref("1000"), RangeEnd: ref("1500"),
		Scope: models.RangeScopeCollege, CollegeID: ref("college-b"),
	}, officerClaims("college-a"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAuthority.Code, appErrors.FromError(err).Code)

	// Their own college is fine.
	rng, err := svc.AddRange(context.Background(), dto.CreatePRNRangeRequest{
		RangeStart: ref("1000"), RangeEnd: ref("1500"),
		Scope: models.RangeScopeCollege, CollegeID: ref("college-a"),
	}, officerClaims("college-a"))
	require.NoError(t, err)
	require.Equal(t, models.AuthorityPlacementOfficer, rng.CreatedByAuthority)

	// Super admins create global ranges; the college id is dropped.
	rng, err = svc.AddRange(context.Background(), dto.CreatePRNRangeRequest{
		RangeStart: ref("1000"), RangeEnd: ref("1999"),
		Scope: models.RangeScopeGlobal, CollegeID: ref("ignored"),
	}, superClaims())
	require.NoError(t, err)
	require.Equal(t, models.AuthoritySuperAdmin, rng.CreatedByAuthority)
	require.Nil(t, rng.CollegeID)
	require.True(t, rng.IsEnabled)
}

func TestAddRangeFormValidation(t *testing.T) {
	svc, _, _, _ := newTestPRNService()

	cases := []dto.CreatePRNRangeRequest{
		{Scope: models.RangeScopeGlobal}, // neither form
		{RangeStart: ref("1000"), RangeEnd: ref("1999"), SinglePRN: ref("42"), Scope: models.RangeScopeGlobal}, // both forms
		{RangeStart: ref("1000"), Scope: models.RangeScopeGlobal},                                              // half an interval
		{RangeStart: ref("2000"), RangeEnd: ref("1000"), Scope: models.RangeScopeGlobal},                       // inverted
		{SinglePRN: ref("42"), Scope: models.RangeScopeCollege},                                                // college scope without college
	}
	for i, req := range cases {
		_, err := svc.AddRange(context.Background(), req, superClaims())
		require.Error(t, err, "case %d", i)
		require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, "case %d", i)
	}
}

func TestAddRangeInvalidatesCacheAndAudits(t *testing.T) {
	svc, _, audit, cache := newTestPRNService()

	_, err := svc.AddRange(context.Background(), dto.CreatePRNRangeRequest{
		SinglePRN: ref("2042"), Scope: models.RangeScopeGlobal,
	}, superClaims())
	require.NoError(t, err)
	require.Equal(t, 1, cache.invalidated)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionRangeCreate, audit.logs[0].Action)
}

func TestUpdateRangeDisableRequiresReason(t *testing.T) {
	svc, store, audit, _ := newTestPRNService()
	store.ranges["rng-1"] = &models.PRNRange{
		ID: "rng-1", SinglePRN: ref("42"), Scope: models.RangeScopeGlobal,
		CreatedByAuthority: models.AuthoritySuperAdmin, IsEnabled: true,
	}

	disabled := false
	_, err := svc.UpdateRange(context.Background(), "rng-1", dto.UpdatePRNRangeRequest{IsEnabled: &disabled}, superClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	reason := "cohort closed"
	rng, err := svc.UpdateRange(context.Background(), "rng-1", dto.UpdatePRNRangeRequest{IsEnabled: &disabled, DisabledReason: &reason}, superClaims())
	require.NoError(t, err)
	require.False(t, rng.IsEnabled)
	require.Equal(t, reason, *rng.DisabledReason)
	require.Equal(t, models.AuditActionRangeDisable, audit.logs[len(audit.logs)-1].Action)

	// Re-enabling clears the reason.
	enabled := true
	rng, err = svc.UpdateRange(context.Background(), "rng-1", dto.UpdatePRNRangeRequest{IsEnabled: &enabled}, superClaims())
	require.NoError(t, err)
	require.True(t, rng.IsEnabled)
	require.Nil(t, rng.DisabledReason)
}

func TestUpdateRangeAuthorityPrecedence(t *testing.T) {
	svc, store, _, _ := newTestPRNService()
	store.ranges["rng-1"] = &models.PRNRange{
		ID: "rng-1", SinglePRN: ref("42"), Scope: models.RangeScopeGlobal,
		CreatedByAuthority: models.AuthoritySuperAdmin, IsEnabled: true,
	}

	desc := "attempted edit"
	_, err := svc.UpdateRange(context.Background(), "rng-1", dto.UpdatePRNRangeRequest{Description: &desc}, officerClaims("college-a"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAuthority.Code, appErrors.FromError(err).Code)
}

func TestUpdateRangeMapsRepositoryErrors(t *testing.T) {
	svc, store, _, _ := newTestPRNService()
	store.ranges["rng-1"] = &models.PRNRange{
		ID: "rng-1", SinglePRN: ref("42"), Scope: models.RangeScopeGlobal,
		CreatedByAuthority: models.AuthorityPlacementOfficer, IsEnabled: true,
	}
	store.updateErr = repository.ErrAuthorityDenied

	desc := "race"
	_, err := svc.UpdateRange(context.Background(), "rng-1", dto.UpdatePRNRangeRequest{Description: &desc}, officerClaims("college-a"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAuthority.Code, appErrors.FromError(err).Code)

	store.updateErr = nil
	_, err = svc.UpdateRange(context.Background(), "missing", dto.UpdatePRNRangeRequest{Description: &desc}, superClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteRangeAuditsAndInvalidates(t *testing.T) {
	svc, store, audit, cache := newTestPRNService()
	store.ranges["rng-1"] = &models.PRNRange{
		ID: "rng-1", SinglePRN: ref("42"), Scope: models.RangeScopeGlobal,
		CreatedByAuthority: models.AuthoritySuperAdmin, IsEnabled: true,
	}

	require.NoError(t, svc.DeleteRange(context.Background(), "rng-1", superClaims()))
	require.Equal(t, 1, cache.invalidated)
	require.Equal(t, models.AuditActionRangeDelete, audit.logs[len(audit.logs)-1].Action)
	require.Empty(t, store.ranges)
}

func TestResolveExistentialMatching(t *testing.T) {
	svc, store, _, _ := newTestPRNService()
	collegeA := "college-a"
	store.ranges["global"] = &models.PRNRange{
		ID: "global", RangeStart: ref("1000"), RangeEnd: ref("1999"),
		Scope: models.RangeScopeGlobal, CreatedByAuthority: models.AuthoritySuperAdmin, IsEnabled: true,
	}
	store.ranges["college"] = &models.PRNRange{
		ID: "college", RangeStart: ref("1000"), RangeEnd: ref("1500"),
		Scope: models.RangeScopeCollege, CollegeID: &collegeA,
		CreatedByAuthority: models.AuthorityPlacementOfficer, IsEnabled: true,
	}

	// Inside both ranges: matched regardless of which one wins.
	verdict, err := svc.Resolve(context.Background(), "1200", &collegeA)
	require.NoError(t, err)
	require.True(t, verdict.Matched)

	// Another college only sees the global range.
	collegeB := "college-b"
	verdict, err = svc.Resolve(context.Background(), "1600", &collegeB)
	require.NoError(t, err)
	require.True(t, verdict.Matched)
	require.Equal(t, "global", verdict.MatchingRangeID)

	// Outside every range.
	verdict, err = svc.Resolve(context.Background(), "2500", &collegeA)
	require.NoError(t, err)
	require.False(t, verdict.Matched)

	// No college context: only global ranges apply.
	verdict, err = svc.Resolve(context.Background(), "1200", nil)
	require.NoError(t, err)
	require.True(t, verdict.Matched)
	require.Equal(t, "global", verdict.MatchingRangeID)
}

func TestResolveIgnoresDisabledRanges(t *testing.T) {
	svc, store, _, _ := newTestPRNService()
	reason := "closed"
	store.ranges["off"] = &models.PRNRange{
		ID: "off", RangeStart: ref("1000"), RangeEnd: ref("1999"),
		Scope: models.RangeScopeGlobal, CreatedByAuthority: models.AuthoritySuperAdmin,
		IsEnabled: false, DisabledReason: &reason,
	}

	verdict, err := svc.Resolve(context.Background(), "1200", nil)
	require.NoError(t, err)
	require.False(t, verdict.Matched)
}

func TestResolveSinglePRN(t *testing.T) {
	svc, store, _, _ := newTestPRNService()
	store.ranges["single"] = &models.PRNRange{
		ID: "single", SinglePRN: ref("2042"),
		Scope: models.RangeScopeGlobal, CreatedByAuthority: models.AuthoritySuperAdmin, IsEnabled: true,
	}

	verdict, err := svc.Resolve(context.Background(), "2042", nil)
	require.NoError(t, err)
	require.True(t, verdict.Matched)

	verdict, err = svc.Resolve(context.Background(), "2043", nil)
	require.NoError(t, err)
	require.False(t, verdict.Matched)
}

func TestResolveUsesCache(t *testing.T) {
	svc, store, _, cache := newTestPRNService()
	store.ranges["global"] = &models.PRNRange{
		ID: "global", RangeStart: ref("1000"), RangeEnd: ref("1999"),
		Scope: models.RangeScopeGlobal, CreatedByAuthority: models.AuthoritySuperAdmin, IsEnabled: true,
	}

	_, err := svc.Resolve(context.Background(), "1200", nil)
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalled)

	// Second resolution is served from the cache.
	verdict, err := svc.Resolve(context.Background(), "1200", nil)
	require.NoError(t, err)
	require.True(t, verdict.Matched)
	require.Equal(t, 1, store.listCalled)

	// A mutation drops every cached verdict.
	cache.Invalidate(context.Background())
	_, err = svc.Resolve(context.Background(), "1200", nil)
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalled)
}

func TestResolveRejectsEmptyIdentifier(t *testing.T) {
	svc, _, _, _ := newTestPRNService()
	_, err := svc.Resolve(context.Background(), "   ", nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRangeAuditFailureSurfaces(t *testing.T) {
	svc, _, audit, _ := newTestPRNService()
	audit.err = errors.New("trail unavailable")

	_, err := svc.AddRange(context.Background(), dto.CreatePRNRangeRequest{
		SinglePRN: ref("42"), Scope: models.RangeScopeGlobal,
	}, superClaims())
	require.Error(t, err)
}
