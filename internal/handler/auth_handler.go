package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/service"
	"github.com/leaddesk/backend/pkg/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookieName = "oauth_state"
	googleUserInfoURL    = "https://www.googleapis.com/oauth2/v3/userinfo"
	maxLoginBodyBytes    = 4 << 10
)

// generateOAuthState returns a random state value for the OAuth CSRF check.
func generateOAuthState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

// setStateCookie stores state in a short-lived HttpOnly cookie.
func setStateCookie(w http.ResponseWriter, state string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// verifyOAuthState compares the state cookie with the state query parameter.
func verifyOAuthState(r *http.Request) bool {
	cookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return cookie.Value == r.URL.Query().Get("state")
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

// AuthHandler serves admin login, logout and session endpoints.
type AuthHandler struct {
	authService   service.AdminAuthService
	googleConfig  *oauth2.Config
	sessionSecret []byte
	sessionTTL    time.Duration
	secureCookie  bool
	frontendURL   string

	// fetchGoogleUser exchanges an authorization code for the Google profile.
	fetchGoogleUser func(ctx context.Context, code string) (*service.GoogleUserInfo, error)
	now             func() time.Time
}

// AuthConfig configures AuthHandler.
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectPath string
	BackendURL         string
	SessionSecret      string
	SessionTTL         time.Duration
	SecureCookie       bool
	FrontendURL        string
}

// NewAuthHandler creates an AuthHandler (DI: AdminAuthService).
func NewAuthHandler(authService service.AdminAuthService, cfg AuthConfig) *AuthHandler {
	redirectBase := cfg.BackendURL
	if redirectBase == "" {
		redirectBase = "http://localhost:8080"
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}

	h := &AuthHandler{
		authService: authService,
		googleConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  redirectBase + cfg.GoogleRedirectPath,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
		sessionSecret: auth.SessionSecretBytes(cfg.SessionSecret),
		sessionTTL:    ttl,
		secureCookie:  cfg.SecureCookie,
		frontendURL:   cfg.FrontendURL,
		now:           time.Now,
	}
	h.fetchGoogleUser = h.exchangeGoogleUser
	return h
}

// issue writes a session cookie for user.
func (h *AuthHandler) issue(w http.ResponseWriter, user *model.AdminUser) (*auth.AdminSession, error) {
	s := auth.AdminSession{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: h.now().Add(h.sessionTTL),
	}
	if err := auth.IssueSession(w, s, h.sessionSecret, h.secureCookie); err != nil {
		return nil, err
	}
	return &s, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeFail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeFail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		writeServerError(w, r, "Login failed", err)
		return
	}

	s, err := h.issue(w, user)
	if err != nil {
		writeServerError(w, r, "Login failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": s})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w, h.secureCookie)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Session handles GET /api/auth/session. It runs behind RequireAdmin.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": s})
}

// GoogleLoginURL returns the Google OAuth URL (GET /api/auth/google/login).
func (h *AuthHandler) GoogleLoginURL(w http.ResponseWriter, r *http.Request) {
	if h.googleConfig.ClientID == "" {
		writeFail(w, http.StatusNotFound, "Google login is not enabled")
		return
	}
	state := generateOAuthState()
	setStateCookie(w, state, h.secureCookie)
	url := h.googleConfig.AuthCodeURL(state)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": url})
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (h *AuthHandler) exchangeGoogleUser(ctx context.Context, code string) (*service.GoogleUserInfo, error) {
	token, err := h.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange: %w", err)
	}
	resp, err := h.googleConfig.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: unexpected status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("userinfo decode: %w", err)
	}
	return &service.GoogleUserInfo{
		Sub:           info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
	}, nil
}

func (h *AuthHandler) loginRedirect(w http.ResponseWriter, r *http.Request, errCode string) {
	http.Redirect(w, r, h.frontendURL+"/admin/login?error="+errCode, http.StatusFound)
}

// GoogleCallback handles GET /api/auth/google/callback.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !verifyOAuthState(r) {
		clearStateCookie(w)
		h.loginRedirect(w, r, "invalid_state")
		return
	}
	clearStateCookie(w)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.loginRedirect(w, r, "no_code")
		return
	}

	info, err := h.fetchGoogleUser(r.Context(), code)
	if err != nil {
		h.loginRedirect(w, r, "exchange_failed")
		return
	}

	user, err := h.authService.LoginWithGoogle(r.Context(), info)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.loginRedirect(w, r, "not_authorized")
		return
	}
	if err != nil {
		h.loginRedirect(w, r, "login_failed")
		return
	}

	if _, err := h.issue(w, user); err != nil {
		h.loginRedirect(w, r, "login_failed")
		return
	}
	http.Redirect(w, r, h.frontendURL+"/admin", http.StatusFound)
}
