package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
)

type RoleRepo struct {
	store *Store
}

func (r *RoleRepo) GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	var role domain.Role
	err := r.store.write(func(d *state, now time.Time) error {
		for _, existing := range d.roles {
			if existing.Name == name {
				role = existing
				return nil
			}
		}
		role = domain.Role{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
		if description != "" {
			desc := description
			role.Description = &desc
		}
		d.roles[role.ID] = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByIDs returns the roles that exist among ids, in the order given.
func (r *RoleRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(ids))
	r.store.read(func(d *state) {
		for _, id := range ids {
			if role, ok := d.roles[id]; ok {
				roles = append(roles, role)
			}
		}
	})
	return roles, nil
}

func (r *RoleRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	roles := []domain.Role{}
	r.store.read(func(d *state) {
		roles = rolesOf(d, userID)
	})
	return roles, nil
}

func (r *RoleRepo) ListForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.Role, error) {
	out := make(map[uuid.UUID][]domain.Role, len(userIDs))
	r.store.read(func(d *state) {
		for _, id := range userIDs {
			out[id] = rolesOf(d, id)
		}
	})
	return out, nil
}

func (r *RoleRepo) AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.store.write(func(d *state, _ time.Time) error {
		if _, ok := d.users[userID]; !ok {
			return sql.ErrNoRows
		}
		if _, ok := d.roles[roleID]; !ok {
			return sql.ErrNoRows
		}
		for _, id := range d.userRoles[userID] {
			if id == roleID {
				return nil
			}
		}
		d.userRoles[userID] = append(d.userRoles[userID], roleID)
		return nil
	})
}

func (r *RoleRepo) ClearUserRoles(ctx context.Context, userID uuid.UUID) error {
	return r.store.write(func(d *state, _ time.Time) error {
		delete(d.userRoles, userID)
		return nil
	})
}

func rolesOf(d *state, userID uuid.UUID) []domain.Role {
	ids := d.userRoles[userID]
	roles := make([]domain.Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := d.roles[id]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}
