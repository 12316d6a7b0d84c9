package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/pkg/auth"
)

func newTestRoutes(t *testing.T, publicList bool) http.Handler {
	t.Helper()
	rl := NewRateLimiter(100)
	t.Cleanup(rl.Close)
	return Routes{
		Base:              New(&mockDB{}, "http://localhost:3000"),
		Contact:           NewContactHandler(&mockContactService{}),
		Auth:              newTestAuthHandler(&mockAdminAuthService{}),
		Chat:              NewChatHandler(&mockChatService{}),
		Legal:             NewLegalHandler(LegalConfig{DocsDir: t.TempDir()}),
		Providers:         NewProvidersHandler(ProvidersConfig{GoogleClientID: "gid"}),
		Limiter:           rl,
		SessionSecret:     auth.SessionSecretBytes(testSessionSecret),
		PublicContactList: publicList,
	}.Handler()
}

func sessionCookie(t *testing.T, role string, expiresAt time.Time) *http.Cookie {
	t.Helper()
	token, err := auth.EncodeSession(auth.AdminSession{
		UserID: "01HADMIN", Username: "admin", Role: role, ExpiresAt: expiresAt,
	}, auth.SessionSecretBytes(testSessionSecret))
	if err != nil {
		t.Fatalf("encode session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookieName(), Value: token}
}

func TestRoutes_MutationsRequireSession(t *testing.T) {
	h := newTestRoutes(t, true)

	tests := []struct {
		method, path, body string
	}{
		{http.MethodPut, "/api/admin/contacts", `{"id":1,"status":"closed"}`},
		{http.MethodPatch, "/api/admin/contacts/1", `{"status":"closed"}`},
		{http.MethodGet, "/api/admin/contacts/1", ""},
		{http.MethodGet, "/api/admin/contacts/summary", ""},
		{http.MethodGet, "/api/auth/session", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestRoutes_ExpiredSessionIsUnauthorized(t *testing.T) {
	h := newTestRoutes(t, false)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/contacts", strings.NewReader(`{"id":1,"status":"closed"}`))
	req.AddCookie(sessionCookie(t, model.RoleAdmin, time.Now().Add(-time.Minute)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	expectFail(t, rec, http.StatusUnauthorized, "Unauthorized")
}

func TestRoutes_UnknownRoleIsForbidden(t *testing.T) {
	h := newTestRoutes(t, false)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/contacts", strings.NewReader(`{"id":1,"status":"closed"}`))
	req.AddCookie(sessionCookie(t, "viewer", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	expectFail(t, rec, http.StatusForbidden, "Forbidden")
}

func TestRoutes_ValidSessionUpdates(t *testing.T) {
	h := newTestRoutes(t, false)

	for _, role := range []string{model.RoleAdmin, model.RoleModerator} {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/contacts/1", strings.NewReader(`{"status":"in_progress"}`))
		req.AddCookie(sessionCookie(t, role, time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", role, rec.Code, rec.Body.String())
		}
	}
}

func TestRoutes_ContactListGate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
	rec := httptest.NewRecorder()
	newTestRoutes(t, false).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("gated list: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
	rec = httptest.NewRecorder()
	newTestRoutes(t, true).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("public list: expected 200, got %d", rec.Code)
	}
}

func TestRoutes_SummaryNotShadowedByID(t *testing.T) {
	h := newTestRoutes(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts/summary", nil)
	req.AddCookie(sessionCookie(t, model.RoleAdmin, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := decodeBody(t, rec)
	if _, ok := body["summary"]; !ok {
		t.Errorf("expected summary response, got %v", body)
	}
}

func TestRoutes_SetsRequestIDAndSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRoutes(t, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}
