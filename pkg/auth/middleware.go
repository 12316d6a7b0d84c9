package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
)

type contextKey string

const sessionKey contextKey = "admin_session"

// SessionFromContext returns the admin session set by RequireAdmin.
func SessionFromContext(ctx context.Context) (*AdminSession, bool) {
	s, ok := ctx.Value(sessionKey).(*AdminSession)
	return s, ok && s != nil
}

// WithSession stores the admin session in the context.
func WithSession(ctx context.Context, s *AdminSession) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// RequireAdmin admits requests whose session cookie is valid, unexpired and
// carries one of roles. Missing, malformed and expired sessions get 401; a
// valid session with another role gets 403.
func RequireAdmin(sessionSecret []byte, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := CheckAuth(r, sessionSecret)
			if err := res.Err(); err != nil {
				slog.Debug("admin request rejected", "path", r.URL.Path, "error", err)
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, res.Session.Role) {
				writeAuthError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), res.Session)))
		})
	}
}
