package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
)

type RoleRepository interface {
	GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Role, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error)
	ListForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.Role, error)
	AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error
	ClearUserRoles(ctx context.Context, userID uuid.UUID) error
}
