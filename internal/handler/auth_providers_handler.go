package handler

import (
	"net/http"
)

// ProvidersConfig holds the configuration that determines which admin login methods are enabled.
// These values are derived from environment variables at startup.
type ProvidersConfig struct {
	// GoogleClientID: include "google" when non-empty (GOOGLE_CLIENT_ID env var)
	GoogleClientID string
	// ChatEnabled reports whether the public assistant is configured (GEMINI_API_KEY).
	ChatEnabled bool
}

// ProvidersHandler handles GET /api/auth/providers
type ProvidersHandler struct {
	cfg ProvidersConfig
}

// NewProvidersHandler creates a ProvidersHandler with the given configuration.
func NewProvidersHandler(cfg ProvidersConfig) *ProvidersHandler {
	return &ProvidersHandler{cfg: cfg}
}

// providersResponse is the JSON response shape for GET /api/auth/providers.
type providersResponse struct {
	Success   bool     `json:"success"`
	Providers []string `json:"providers"`
	Chat      bool     `json:"chat"`
}

// Providers handles GET /api/auth/providers.
// Password login is always included. Google is included when a client ID is set.
func (h *ProvidersHandler) Providers(w http.ResponseWriter, r *http.Request) {
	providers := []string{"password"}
	if h.cfg.GoogleClientID != "" {
		providers = append(providers, "google")
	}
	writeJSON(w, http.StatusOK, providersResponse{Success: true, Providers: providers, Chat: h.cfg.ChatEnabled})
}
