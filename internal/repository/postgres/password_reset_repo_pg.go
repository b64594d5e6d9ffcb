package postgres

import (
	"context"
	"time"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type PasswordResetRepository struct {
	db DBTX
}

func NewPasswordResetRepo(db DBTX) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Upsert(ctx context.Context, email, token string, updatedAt time.Time) (*domain.PasswordReset, error) {
	const query = `
        INSERT INTO password_reset (email, token, created_at, updated_at)
        VALUES ($1, $2, $3, $3)
        ON CONFLICT (email) DO UPDATE
        SET token = EXCLUDED.token,
            updated_at = EXCLUDED.updated_at
        RETURNING email, token, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query, email, token, updatedAt)
	var reset domain.PasswordReset
	if err := row.StructScan(&reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	const query = `
        SELECT email, token, created_at, updated_at
        FROM password_reset
        WHERE token = $1
    `
	var reset domain.PasswordReset
	if err := r.db.GetContext(ctx, &reset, query, token); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepository) FindByEmailAndToken(ctx context.Context, email, token string) (*domain.PasswordReset, error) {
	const query = `
        SELECT email, token, created_at, updated_at
        FROM password_reset
        WHERE email = $1 AND token = $2
    `
	var reset domain.PasswordReset
	if err := r.db.GetContext(ctx, &reset, query, email, token); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepository) DeleteByEmail(ctx context.Context, email string) error {
	const query = `DELETE FROM password_reset WHERE email = $1`
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

var _ ports.PasswordResetRepository = (*PasswordResetRepository)(nil)
