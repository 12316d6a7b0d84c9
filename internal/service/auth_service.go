package service

import (
	"context"
	"errors"

	"github.com/leaddesk/backend/internal/model"
)

// ErrInvalidCredentials is returned for any failed login. It does not say
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// MinPasswordLength is the shortest password CreateAdmin accepts.
const MinPasswordLength = 8

// GoogleUserInfo is the profile returned by Google's userinfo endpoint.
type GoogleUserInfo struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
}

// AdminAuthService authenticates admin accounts for the contact panel.
type AdminAuthService interface {
	// Login checks a username and password.
	Login(ctx context.Context, username, password string) (*model.AdminUser, error)
	// LoginWithGoogle maps a verified Google email onto an existing admin.
	// Accounts are never created on this path.
	LoginWithGoogle(ctx context.Context, info *GoogleUserInfo) (*model.AdminUser, error)
	// CreateAdmin provisions a new account with a bcrypt password hash.
	CreateAdmin(ctx context.Context, username, email, password, role string) (*model.AdminUser, error)
}
