package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/middleware"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
)

type prnStoreStub struct {
	ranges []models.PRNRange
	last   *models.PRNRange
}

func (s *prnStoreStub) Create(ctx context.Context, rng *models.PRNRange) error {
	rng.ID = "rng-1"
	s.last = rng
	return nil
}

func (s *prnStoreStub) GetByID(context.Context, string) (*models.PRNRange, error) {
	return nil, sql.ErrNoRows
}

func (s *prnStoreStub) List(context.Context, models.PRNRangeFilter) ([]models.PRNRange, error) {
	return s.ranges, nil
}

func (s *prnStoreStub) ListEnabledForCollege(context.Context, *string) ([]models.PRNRange, error) {
	return s.ranges, nil
}

func (s *prnStoreStub) Update(context.Context, *models.PRNRange, models.Authority) error {
	return sql.ErrNoRows
}

func (s *prnStoreStub) Delete(context.Context, string, models.Authority) error {
	return sql.ErrNoRows
}

func newPRNHandlerFixture(store *prnStoreStub) *PRNHandler {
	svc := service.NewPRNService(store, auditSink{}, noopCache{}, nil)
	return NewPRNHandler(svc)
}

func jsonContext(t *testing.T, method, path string, body interface{}, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, recorder
}

func TestPRNHandlerCreate(t *testing.T) {
	store := &prnStoreStub{}
	handler := newPRNHandlerFixture(store)
	c, recorder := jsonContext(t, http.MethodPost, "/ranges", gin.H{
		"range_start": "1000",
		"range_end":   "1999",
		"scope":       "GLOBAL",
	}, &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, store.last)
	require.Equal(t, models.AuthoritySuperAdmin, store.last.CreatedByAuthority)
}

func TestPRNHandlerCreateOfficerGlobalForbidden(t *testing.T) {
	store := &prnStoreStub{}
	handler := newPRNHandlerFixture(store)
	college := "college-a"
	c, recorder := jsonContext(t, http.MethodPost, "/ranges", gin.H{
		"range_start": "1000",
		"range_end":   "1999",
		"scope":       "GLOBAL",
	}, &models.JWTClaims{UserID: "officer-1", Role: models.RolePlacementOfficer, CollegeID: &college})

	handler.Create(c)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Contains(t, recorder.Body.String(), "AUTHORITY_ERROR")
	require.Nil(t, store.last)
}

func TestPRNHandlerCreateUnauthenticated(t *testing.T) {
	handler := newPRNHandlerFixture(&prnStoreStub{})
	c, recorder := jsonContext(t, http.MethodPost, "/ranges", gin.H{"scope": "GLOBAL"}, nil)

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestPRNHandlerListAndExport(t *testing.T) {
	single := "2042"
	store := &prnStoreStub{ranges: []models.PRNRange{{
		ID: "rng-1", SinglePRN: &single,
		Scope: models.RangeScopeGlobal, CreatedByAuthority: models.AuthoritySuperAdmin, IsEnabled: true,
	}}}
	handler := newPRNHandlerFixture(store)

	c, recorder := jsonContext(t, http.MethodGet, "/ranges", nil, &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin})
	handler.List(c)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "rng-1")

	c, recorder = jsonContext(t, http.MethodGet, "/ranges/export", nil, &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin})
	handler.Export(c)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	require.Contains(t, recorder.Body.String(), "single")
	require.Contains(t, recorder.Body.String(), "2042")
}
