package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

const userColumns = `id, email, name, password_hash, password_salt, status, activation_token, email_verified_at, created_at, updated_at, deleted_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, params ports.CreateUserParams) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (email, name, password_hash, password_salt, status, activation_token, email_verified_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query,
		params.Email,
		params.Name,
		params.PasswordHash,
		params.PasswordSalt,
		int16(params.Status),
		params.ActivationToken,
		params.EmailVerifiedAt,
	)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE email = $1 AND deleted_at IS NULL
    `
	return r.get(ctx, query, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE id = $1 AND deleted_at IS NULL
    `
	return r.get(ctx, query, id)
}

func (r *UserRepository) FindByActivationToken(ctx context.Context, token string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE activation_token = $1 AND deleted_at IS NULL
    `
	return r.get(ctx, query, token)
}

// Activate only matches rows that still carry an activation token, so a replayed
// or concurrent activation returns sql.ErrNoRows.
func (r *UserRepository) Activate(ctx context.Context, id uuid.UUID, verifiedAt time.Time) (*domain.User, error) {
	const query = `
        UPDATE user_account
        SET status = $2,
            activation_token = NULL,
            email_verified_at = $3,
            updated_at = NOW()
        WHERE id = $1 AND activation_token IS NOT NULL AND deleted_at IS NULL
        RETURNING ` + userColumns
	return r.get(ctx, query, id, int16(domain.UserStatusActivated), verifiedAt)
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, params ports.UpdateUserParams) (*domain.User, error) {
	const query = `
        UPDATE user_account
        SET name = COALESCE($2, name),
            email = COALESCE($3, email),
            status = $4,
            email_verified_at = COALESCE($5, email_verified_at),
            updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL
        RETURNING ` + userColumns
	return r.get(ctx, query, id, params.Name, params.Email, int16(params.Status), params.EmailVerifiedAt)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            password_salt = $3,
            updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL
    `
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	const query = `
        UPDATE user_account
        SET status = $2,
            updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL
    `
	res, err := r.db.ExecContext(ctx, query, id, int16(status))
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE deleted_at IS NULL
        ORDER BY created_at, id
        LIMIT $1 OFFSET $2
    `
	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM user_account WHERE deleted_at IS NULL`
	var total int64
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE user_account
        SET deleted_at = NOW(),
            updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL
    `
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *UserRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	const query = `
        UPDATE user_account
        SET deleted_at = NOW(),
            updated_at = NOW()
        WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL
    `
	res, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *UserRepository) get(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, err
	}
	return &user, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
