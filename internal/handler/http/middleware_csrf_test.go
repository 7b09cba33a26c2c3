package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-access-gate/internal/service"
)

func originCheckStatus(t *testing.T, mutate func(r *http.Request)) int {
	t.Helper()
	fx := newTestHandler(&service.Services{})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "http://gate.local/api/auth/logout", nil)
	req.Host = "gate.local"
	mutate(req)

	rec := httptest.NewRecorder()
	fx.handler.withOriginCheck(next).ServeHTTP(rec, req)
	return rec.Code
}

func TestOriginCheck_RejectsCrossSiteCookiePost(t *testing.T) {
	status := originCheckStatus(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
		r.Header.Set("Origin", "https://evil.example")
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestOriginCheck_AllowsSameOrigin(t *testing.T) {
	status := originCheckStatus(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
		r.Header.Set("Origin", "http://gate.local")
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestOriginCheck_RefererFallback(t *testing.T) {
	status := originCheckStatus(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
		r.Header.Set("Referer", "http://gate.local/dashboard")
	})
	assert.Equal(t, http.StatusOK, status)
}

// TestOriginCheck_MissingOriginWithCookie rejects: browsers always send an
// Origin for cross-site state changes, so a cookie-bearing request without
// one is either ancient or forged.
func TestOriginCheck_MissingOriginWithCookie(t *testing.T) {
	status := originCheckStatus(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	})
	assert.Equal(t, http.StatusForbidden, status)
}

// TestOriginCheck_TokenOnlyRequestExempt verifies requests without the
// session cookie pass: bearer tokens cannot be forged cross-site.
func TestOriginCheck_TokenOnlyRequestExempt(t *testing.T) {
	status := originCheckStatus(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer some.jwt.token")
		r.Header.Set("Origin", "https://evil.example")
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestOriginCheck_SafeMethodsExempt(t *testing.T) {
	fx := newTestHandler(&service.Services{})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "http://gate.local/api/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()

	fx.handler.withOriginCheck(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOriginCheck_ExemptPrefix(t *testing.T) {
	fx := newTestHandler(&service.Services{})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// the test gate config exempts /webhooks/
	req := httptest.NewRequest(http.MethodPost, "http://gate.local/webhooks/billing", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	fx.handler.withOriginCheck(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOriginMatchesHost(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"exact match", "https://gate.local", "gate.local", true},
		{"match with port", "https://gate.local:8443", "gate.local:8443", true},
		{"different host", "https://evil.example", "gate.local", false},
		{"different port", "https://gate.local:9999", "gate.local:8443", false},
		{"empty", "", "gate.local", false},
		{"garbage", "::::", "gate.local", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, originMatchesHost(tt.origin, tt.host))
		})
	}
}
