package ports

import (
	"context"
	"time"

	"github.com/njprem/user_admin_backend/internal/domain"
)

// PasswordResetRepository stores at most one request per email. Upsert replaces
// the token of an existing request and stamps updatedAt.
type PasswordResetRepository interface {
	Upsert(ctx context.Context, email, token string, updatedAt time.Time) (*domain.PasswordReset, error)
	FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error)
	FindByEmailAndToken(ctx context.Context, email, token string) (*domain.PasswordReset, error)
	DeleteByEmail(ctx context.Context, email string) error
}
