package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leaddesk/backend/internal/model"
)

// PgAdminUserRepository is the PostgreSQL implementation of AdminUserRepository.
type PgAdminUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgAdminUserRepository creates a PgAdminUserRepository.
func NewPgAdminUserRepository(pool *pgxpool.Pool) *PgAdminUserRepository {
	return &PgAdminUserRepository{pool: pool}
}

var _ AdminUserRepository = (*PgAdminUserRepository)(nil)

const adminUserSelectCols = `id, username, email, password_hash, role, created_at`

func scanAdminUser(scan func(...any) error) (*model.AdminUser, error) {
	var u model.AdminUser
	var email *string
	if err := scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	return &u, nil
}

// FindByUsername looks up an admin by username.
func (r *PgAdminUserRepository) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+adminUserSelectCols+` FROM admin_users WHERE username = $1`, username)
	u, err := scanAdminUser(row.Scan)
	if err != nil {
		return nil, storeErr("find admin by username", err)
	}
	return u, nil
}

// FindByEmail looks up an admin by email, case-insensitively.
func (r *PgAdminUserRepository) FindByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+adminUserSelectCols+` FROM admin_users WHERE LOWER(email) = LOWER($1)`, email)
	u, err := scanAdminUser(row.Scan)
	if err != nil {
		return nil, storeErr("find admin by email", err)
	}
	return u, nil
}

// Create inserts an admin user. The caller assigns ID and PasswordHash.
func (r *PgAdminUserRepository) Create(ctx context.Context, user *model.AdminUser) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admin_users (id, username, email, password_hash, role)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 RETURNING created_at`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt)
	return storeErr("create admin user", err)
}
