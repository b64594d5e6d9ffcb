package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type RoleRepository struct {
	db DBTX
}

func NewRoleRepo(db DBTX) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	const query = `
        INSERT INTO role (role_name, description)
        VALUES ($1, NULLIF($2, ''))
        ON CONFLICT (role_name) DO UPDATE
        SET description = COALESCE(role.description, EXCLUDED.description),
            updated_at = NOW()
        RETURNING id, role_name, description, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query, name, description)
	var role domain.Role
	if err := row.StructScan(&role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Role, error) {
	const query = `
        SELECT id, role_name, description, created_at, updated_at
        FROM role
        WHERE id = ANY($1::uuid[])
        ORDER BY role_name
    `
	roles := []domain.Role{}
	if err := r.db.SelectContext(ctx, &roles, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	const query = `
        SELECT r.id, r.role_name, r.description, r.created_at, r.updated_at
        FROM role r
        JOIN user_role ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.role_name
    `
	roles := []domain.Role{}
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) ListForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.Role, error) {
	const query = `
        SELECT ur.user_id, r.id, r.role_name, r.description, r.created_at, r.updated_at
        FROM role r
        JOIN user_role ur ON ur.role_id = r.id
        WHERE ur.user_id = ANY($1::uuid[])
        ORDER BY ur.user_id, r.role_name
    `
	var rows []domain.UserRole
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(userIDs)); err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID][]domain.Role, len(userIDs))
	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.Role)
	}
	return result, nil
}

func (r *RoleRepository) AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	const query = `
        INSERT INTO user_role (role_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (role_id, user_id) DO NOTHING
    `
	_, err := r.db.ExecContext(ctx, query, roleID, userID)
	return err
}

func (r *RoleRepository) ClearUserRoles(ctx context.Context, userID uuid.UUID) error {
	const query = `DELETE FROM user_role WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

var _ ports.RoleRepository = (*RoleRepository)(nil)
