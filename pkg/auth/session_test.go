package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = SessionSecretBytes("test-secret-change-in-production-32b")

func testSession(expiresAt time.Time) AdminSession {
	return AdminSession{UserID: "01HZXADMIN", Username: "alice", Role: "admin", ExpiresAt: expiresAt}
}

func requestWithCookie(t *testing.T, value string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: value})
	return req
}

func TestEncodeDecodeSession_RoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := EncodeSession(testSession(exp), testSecret)
	require.NoError(t, err)

	got, err := DecodeSession(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "01HZXADMIN", got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "admin", got.Role)
	assert.True(t, got.ExpiresAt.Equal(exp), "expiresAt %v != %v", got.ExpiresAt, exp)
}

func TestDecodeSession_WrongSecret(t *testing.T) {
	token, err := EncodeSession(testSession(time.Now().Add(time.Hour)), testSecret)
	require.NoError(t, err)

	_, err = DecodeSession(token, SessionSecretBytes("another-secret-that-is-long-enough!"))
	assert.Error(t, err)
}

func TestDecodeSession_RejectsNoneAlgorithm(t *testing.T) {
	claims := sessionClaims{Username: "mallory", Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = DecodeSession(token, testSecret)
	assert.Error(t, err)
}

func TestDecodeSession_IncompleteClaims(t *testing.T) {
	claims := sessionClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = DecodeSession(token, testSecret)
	assert.Error(t, err)
}

func TestLookupSession_States(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	valid, err := EncodeSession(testSession(now.Add(time.Hour)), testSecret)
	require.NoError(t, err)
	expired, err := EncodeSession(testSession(now.Add(-time.Minute)), testSecret)
	require.NoError(t, err)
	atBoundary, err := EncodeSession(testSession(now), testSecret)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *http.Request
		want SessionState
	}{
		{"no cookie", httptest.NewRequest(http.MethodGet, "/", nil), SessionMissing},
		{"empty cookie", requestWithCookie(t, ""), SessionMissing},
		{"garbage", requestWithCookie(t, "not-a-token"), SessionMalformed},
		{"unsigned segments", requestWithCookie(t, "aaa.bbb.ccc"), SessionMalformed},
		{"expired", requestWithCookie(t, expired), SessionExpired},
		{"expires exactly now", requestWithCookie(t, atBoundary), SessionExpired},
		{"valid", requestWithCookie(t, valid), SessionValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := LookupSession(tt.req, testSecret, now)
			assert.Equal(t, tt.want, res.State, "got %s", res.State)
			if tt.want == SessionValid {
				require.NotNil(t, res.Session)
				assert.Equal(t, "alice", res.Session.Username)
				assert.True(t, res.OK())
				assert.NoError(t, res.Err())
			} else {
				assert.Nil(t, res.Session)
				assert.False(t, res.OK())
				assert.ErrorIs(t, res.Err(), ErrUnauthorized)
				assert.Contains(t, res.Err().Error(), tt.want.String())
			}
		})
	}
}

func TestIssueSession_SetsHttpOnlyCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	err := IssueSession(rec, testSession(time.Now().Add(time.Hour)), testSecret, true)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName(), c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := requestWithCookie(t, c.Value)
	assert.Equal(t, SessionValid, CheckAuth(req, testSecret).State)
}

func TestClearSession_ExpiresCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSession(rec, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestSessionSecretBytes_PadsShortSecret(t *testing.T) {
	assert.Len(t, SessionSecretBytes("short"), 32)
	long := "0123456789012345678901234567890123456789"
	assert.Equal(t, []byte(long), SessionSecretBytes(long))
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("not-a-hash", "correct horse"))
}
