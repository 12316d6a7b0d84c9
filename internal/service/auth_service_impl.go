package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/repository"
	"github.com/leaddesk/backend/pkg/auth"
	"github.com/oklog/ulid/v2"
)

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z9YNY8n4bS7iYfEoZr4NlSxK"

// AdminAuthServiceImpl is the production AdminAuthService.
type AdminAuthServiceImpl struct {
	users repository.AdminUserRepository
}

// NewAdminAuthService creates an AdminAuthService backed by users.
func NewAdminAuthService(users repository.AdminUserRepository) AdminAuthService {
	return &AdminAuthServiceImpl{users: users}
}

// Login checks username and password against the stored bcrypt hash.
func (s *AdminAuthServiceImpl) Login(ctx context.Context, username, password string) (*model.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		auth.CheckPassword(dummyHash, password)
		slog.Info("admin login rejected", "username", username, "reason", "unknown user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		slog.Info("admin login rejected", "username", username, "reason", "bad password")
		return nil, ErrInvalidCredentials
	}
	slog.Info("admin logged in", "user_id", u.ID, "provider", "password")
	return u, nil
}

// LoginWithGoogle looks up the admin whose email matches the verified Google account.
func (s *AdminAuthServiceImpl) LoginWithGoogle(ctx context.Context, info *GoogleUserInfo) (*model.AdminUser, error) {
	if info == nil || info.Email == "" || !info.EmailVerified {
		return nil, ErrInvalidCredentials
	}
	slog.Debug("google admin login", "sub", info.Sub, "email", info.Email)

	u, err := s.users.FindByEmail(ctx, strings.ToLower(info.Email))
	if errors.Is(err, repository.ErrNotFound) {
		slog.Info("admin login rejected", "email", info.Email, "reason", "no admin for google account")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	slog.Info("admin logged in", "user_id", u.ID, "provider", "google")
	return u, nil
}

// CreateAdmin validates input, assigns a ULID and stores the new account.
func (s *AdminAuthServiceImpl) CreateAdmin(ctx context.Context, username, email, password, role string) (*model.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < MinPasswordLength || !model.ValidRole(role) {
		return nil, model.ErrValidation
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.AdminUser{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}
	slog.Info("admin user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}
