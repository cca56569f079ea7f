package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "repairshop/internal/config"
	intdb "repairshop/internal/db"
	"repairshop/internal/domain"
)

// AdminUser is a back-office account. The password hash never leaves the repository layer
// except through FindByLogin.
type AdminUser struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type AdminUserRepository struct {
	DB *sql.DB
}

func (r AdminUserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// FindByLogin loads an account by email and returns it with its bcrypt hash.
func (r AdminUserRepository) FindByLogin(ctx context.Context, email string) (AdminUser, string, error) {
	db := r.db()
	if db == nil {
		return AdminUser{}, "", domain.StoreUnavailableError{Op: "find_admin", Err: errors.New("database not connected")}
	}

	var (
		u    AdminUser
		hash string
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, status
		FROM admin_users
		WHERE email = ?
		LIMIT 1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role, &u.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AdminUser{}, "", domain.NotFoundError{Resource: "admin user", Err: err}
		}
		return AdminUser{}, "", storeErr("find_admin", err)
	}
	return u, hash, nil
}

// EnsureAdmin inserts an owner account unless the email already exists.
func (r AdminUserRepository) EnsureAdmin(ctx context.Context, name, email, passwordHash string) error {
	db := r.db()
	if db == nil {
		return domain.StoreUnavailableError{Op: "ensure_admin", Err: errors.New("database not connected")}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO admin_users (name, email, password_hash, role, status)
		VALUES (?, ?, ?, 'owner', 'active')
		ON DUPLICATE KEY UPDATE id = id
	`, name, strings.ToLower(strings.TrimSpace(email)), passwordHash)
	if err != nil {
		return storeErr("ensure_admin", err)
	}
	return nil
}

// EnsureSchema creates admin_users on a fresh database.
func (r AdminUserRepository) EnsureSchema(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return domain.StoreUnavailableError{Op: "ensure_schema", Err: errors.New("database not connected")}
	}
	if intdb.HasTable(ctx, db, "admin_users") {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS admin_users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(30) NOT NULL DEFAULT 'admin',
	status VARCHAR(30) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return storeErr("ensure_schema", err)
	}
	return nil
}
