package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intconfig "bustiming/internal/config"
	"bustiming/internal/domain/models"
)

type AdminRepository struct {
	DB *sql.DB
}

func (r AdminRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const adminSelect = `
	SELECT id, username, email, password_hash, role, is_active, created_at, updated_at
	FROM admins
`

func scanAdmin(row rowScanner) (models.AdminAccount, error) {
	var a models.AdminAccount
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r AdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, err
}

// GetByUsername matches on the case-folded username.
func (r AdminRepository) GetByUsername(ctx context.Context, username string) (models.AdminAccount, error) {
	return scanAdmin(r.db().QueryRowContext(ctx, adminSelect+` WHERE username = ?`, strings.ToLower(strings.TrimSpace(username))))
}

func (r AdminRepository) GetByID(ctx context.Context, id int64) (models.AdminAccount, error) {
	return scanAdmin(r.db().QueryRowContext(ctx, adminSelect+` WHERE id = ?`, id))
}

func (r AdminRepository) Create(ctx context.Context, a models.AdminAccount) (int64, error) {
	now := time.Now()
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO admins (username, email, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, strings.ToLower(strings.TrimSpace(a.Username)), a.Email, a.PasswordHash, a.Role, a.IsActive, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
