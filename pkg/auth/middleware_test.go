package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNotRun(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})
}

func serveWithCookie(h http.Handler, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: value})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAdmin_NoCookie_Returns401(t *testing.T) {
	rec := serveWithCookie(RequireAdmin(testSecret, "admin")(mustNotRun(t)), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthorized", body["message"])
}

func TestRequireAdmin_MalformedCookie_Returns401(t *testing.T) {
	rec := serveWithCookie(RequireAdmin(testSecret, "admin")(mustNotRun(t)), "invalid.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_ExpiredCookie_Returns401(t *testing.T) {
	token, err := EncodeSession(testSession(time.Now().Add(-time.Hour)), testSecret)
	require.NoError(t, err)

	rec := serveWithCookie(RequireAdmin(testSecret, "admin")(mustNotRun(t)), token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_WrongRole_Returns403(t *testing.T) {
	s := testSession(time.Now().Add(time.Hour))
	s.Role = "viewer"
	token, err := EncodeSession(s, testSecret)
	require.NoError(t, err)

	rec := serveWithCookie(RequireAdmin(testSecret, "admin", "moderator")(mustNotRun(t)), token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Forbidden", body["message"])
}

func TestRequireAdmin_ValidCookie_CallsNextWithSession(t *testing.T) {
	token, err := EncodeSession(testSession(time.Now().Add(time.Hour)), testSecret)
	require.NoError(t, err)

	var got *AdminSession
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rec := serveWithCookie(RequireAdmin(testSecret, "admin", "moderator")(next), token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func TestSessionFromContext_Unset(t *testing.T) {
	_, ok := SessionFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok, "expected no session in a fresh context")
}
