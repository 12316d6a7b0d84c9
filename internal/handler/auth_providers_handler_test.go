package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeProviders(t *testing.T, rec *httptest.ResponseRecorder) providersResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp providersResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// TestProvidersHandler_PasswordOnly verifies that only password is returned
// when Google is not configured.
func TestProvidersHandler_PasswordOnly(t *testing.T) {
	h := NewProvidersHandler(ProvidersConfig{})

	rec := httptest.NewRecorder()
	h.Providers(rec, httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))

	resp := decodeProviders(t, rec)
	if len(resp.Providers) != 1 || resp.Providers[0] != "password" {
		t.Errorf("expected [password], got %v", resp.Providers)
	}
	if resp.Chat {
		t.Error("chat should be reported disabled")
	}
}

// TestProvidersHandler_WithGoogle verifies that google is included
// when GOOGLE_CLIENT_ID is set.
func TestProvidersHandler_WithGoogle(t *testing.T) {
	h := NewProvidersHandler(ProvidersConfig{GoogleClientID: "gid", ChatEnabled: true})

	rec := httptest.NewRecorder()
	h.Providers(rec, httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))

	resp := decodeProviders(t, rec)
	if len(resp.Providers) != 2 || resp.Providers[1] != "google" {
		t.Errorf("expected [password google], got %v", resp.Providers)
	}
	if !resp.Success || !resp.Chat {
		t.Errorf("unexpected response %+v", resp)
	}
}
