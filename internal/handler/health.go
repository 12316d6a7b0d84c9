package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/leaddesk/backend/internal/repository"
)

// healthPingTimeout bounds the store ping so a hung pool cannot stall the health check.
const healthPingTimeout = 2 * time.Second

type healthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Health handles GET /api/health. 200 when the store answers a ping, else 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		if !errors.Is(err, repository.ErrStoreUnavailable) {
			err = fmt.Errorf("ping: %w: %w", repository.ErrStoreUnavailable, err)
		}
		slog.Warn("health check failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Message: "Database unavailable",
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Success: true, Message: "leaddesk API"})
}
