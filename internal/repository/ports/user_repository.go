package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
)

type CreateUserParams struct {
	Email           string
	Name            *string
	PasswordHash    []byte
	PasswordSalt    []byte
	Status          domain.UserStatus
	ActivationToken *string
	EmailVerifiedAt *time.Time
}

type UpdateUserParams struct {
	Name            *string
	Email           *string
	Status          domain.UserStatus
	EmailVerifiedAt *time.Time
}

// UserRepository never returns soft-deleted accounts. Lookups that find nothing
// return sql.ErrNoRows.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByActivationToken(ctx context.Context, token string) (*domain.User, error)
	Activate(ctx context.Context, id uuid.UUID, verifiedAt time.Time) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
}
