package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "admin_session"
const minSecretLen = 32

// DefaultSessionTTL is how long an admin session stays valid after login.
const DefaultSessionTTL = 8 * time.Hour

// ErrUnauthorized is returned when a request carries no usable session.
var ErrUnauthorized = errors.New("unauthorized")

// AdminSession is the authenticated admin carried in the session cookie.
// There is no server-side copy; the cookie is the only record.
type AdminSession struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionState is the outcome of reading the session cookie.
type SessionState int

const (
	SessionMissing SessionState = iota
	SessionMalformed
	SessionExpired
	SessionValid
)

func (s SessionState) String() string {
	switch s {
	case SessionMissing:
		return "missing"
	case SessionMalformed:
		return "malformed"
	case SessionExpired:
		return "expired"
	case SessionValid:
		return "valid"
	}
	return "unknown"
}

// SessionResult is what LookupSession found. Session is non-nil only when
// State is SessionValid.
type SessionResult struct {
	State   SessionState
	Session *AdminSession
}

// OK reports whether the request is authenticated.
func (r SessionResult) OK() bool {
	return r.State == SessionValid && r.Session != nil
}

// Err returns nil for a valid session, otherwise ErrUnauthorized wrapped with the state.
func (r SessionResult) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: session %s", ErrUnauthorized, r.State)
}

type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionCookieName is the name of the admin session cookie.
func SessionCookieName() string {
	return sessionCookieName
}

// SessionSecretBytes pads s to at least 32 bytes for HMAC signing.
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}

// EncodeSession serializes s as an HS256-signed token.
func EncodeSession(s AdminSession, secret []byte) (string, error) {
	claims := sessionClaims{
		Username: s.Username,
		Role:     s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// DecodeSession verifies the signature of token and returns the session it
// carries without looking at expiry. Callers decide what an expired session means.
func DecodeSession(token string, secret []byte) (*AdminSession, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.Username == "" || claims.Role == "" || claims.ExpiresAt == nil {
		return nil, errors.New("incomplete session claims")
	}
	return &AdminSession{
		UserID:    claims.Subject,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// LookupSession reads the session cookie from r and classifies it. Expiry is
// always checked against now.
func LookupSession(r *http.Request, secret []byte, now time.Time) SessionResult {
	cookie, err := r.Cookie(SessionCookieName())
	if err != nil || cookie.Value == "" {
		return SessionResult{State: SessionMissing}
	}
	s, err := DecodeSession(cookie.Value, secret)
	if err != nil {
		return SessionResult{State: SessionMalformed}
	}
	if !now.Before(s.ExpiresAt) {
		return SessionResult{State: SessionExpired}
	}
	return SessionResult{State: SessionValid, Session: s}
}

// CheckAuth is LookupSession at the current time.
func CheckAuth(r *http.Request, secret []byte) SessionResult {
	return LookupSession(r, secret, time.Now())
}

// IssueSession writes the signed session cookie. The cookie expires with the session.
func IssueSession(w http.ResponseWriter, s AdminSession, secret []byte, secure bool) error {
	token, err := EncodeSession(s, secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName(),
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
	return nil
}

// ClearSession removes the session cookie.
func ClearSession(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}
