// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-access-gate/internal/service"
	"github.com/MKhiriev/go-access-gate/models"
)

func TestRoutes_HealthIsPublic(t *testing.T) {
	fx := newTestHandler(&service.Services{})
	router := fx.handler.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_DashboardRequiresAuth(t *testing.T) {
	fx := newTestHandler(&service.Services{})
	router := fx.handler.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestRoutes_LoginThenDashboard walks the happy path end to end through the
// real middleware chain: log in, take the cookie, use it on an
// authenticated route.
func TestRoutes_LoginThenDashboard(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _, _ string) (models.User, error) {
			return activeUser, nil
		},
	}
	fx := newTestHandler(&service.Services{AuthService: auth})
	router := fx.handler.Routes()

	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"identifier":"alice","password":"correct-pass"}`)))
	require.Equal(t, http.StatusOK, loginRec.Code)
	cookie := sessionCookie(t, loginRec)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, models.DashboardAdmin, data["dashboard"])
}

// TestRoutes_LoginRateLimitedPerIP verifies the login endpoint bucket keys
// on the client address: one source spraying many identifiers is throttled
// even though each identifier budget is untouched.
func TestRoutes_LoginRateLimitedPerIP(t *testing.T) {
	fx := newTestHandler(&service.Services{})
	router := fx.handler.Routes()

	identifiers := []string{"alice", "bob", "carol"}
	for _, identifier := range identifiers {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"identifier":"`+identifier+`","password":"guess"}`)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"identifier":"dave","password":"guess"}`)))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

// TestRoutes_AdminRequiresRole verifies the admin group rejects a customer
// session before any permission check runs.
func TestRoutes_AdminRequiresRole(t *testing.T) {
	catalog := &mockCatalogService{
		hasPermissionFn: func(_ context.Context, _ int64, _ string) (bool, error) {
			t.Fatal("permission check must not run for a rejected role")
			return false, nil
		},
	}
	fx := newTestHandler(&service.Services{CatalogService: catalog})
	router := fx.handler.Routes()

	customer := activeUser
	customer.RoleSlug = models.RoleSlugCustomer
	created, err := fx.sessions.Create(context.Background(), customer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: created.SessionID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_AdminPermissionEnforced(t *testing.T) {
	catalog := &mockCatalogService{
		hasPermissionFn: func(_ context.Context, _ int64, slug string) (bool, error) {
			return slug == "users.view", nil
		},
	}
	fx := newTestHandler(&service.Services{CatalogService: catalog})
	router := fx.handler.Routes()

	created, err := fx.sessions.Create(context.Background(), activeUser)
	require.NoError(t, err)

	// granted permission admits
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: created.SessionID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// missing permission rejects
	req = httptest.NewRequest(http.MethodGet, "/api/admin/permissions", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: created.SessionID})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestRoutes_WrongMethodHidesRoute verifies the MethodNotAllowed override:
// an unsupported method answers 404, not 405.
func TestRoutes_WrongMethodHidesRoute(t *testing.T) {
	fx := newTestHandler(&service.Services{})
	router := fx.handler.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_UnknownPath(t *testing.T) {
	fx := newTestHandler(&service.Services{})
	router := fx.handler.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestRoutes_TraceIDPropagated(t *testing.T) {
	fx := newTestHandler(&service.Services{})
	router := fx.handler.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Trace-ID", "caller-supplied-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied-id", rec.Header().Get("X-Trace-ID"))
}
