package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
	"github.com/njprem/user_admin_backend/internal/util"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type CreateUserInput struct {
	Email           string
	Password        string
	Name            *string
	EmailVerifiedAt *time.Time
	RoleIDs         []uuid.UUID
}

type UpdateUserInput struct {
	Name            *string
	Email           *string
	EmailVerifiedAt *time.Time
	RoleIDs         []uuid.UUID
}

// UserService backs the administrative /users surface.
type UserService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	tx     ports.Transactor
	logger *zap.Logger
}

func NewUserService(users ports.UserRepository, roles ports.RoleRepository, tx ports.Transactor, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, roles: roles, tx: tx, logger: logger}
}

func (s *UserService) List(ctx context.Context, page, perPage int) (*domain.UserPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	if len(users) > 0 {
		ids := make([]uuid.UUID, len(users))
		for i := range users {
			ids[i] = users[i].ID
		}
		roles, err := s.roles.ListForUsers(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load roles: %w", err)
		}
		for i := range users {
			users[i].Roles = roles[users[i].ID]
		}
	}

	return &domain.UserPage{Users: users, Total: total, CurrentPage: page, PerPage: perPage}, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	roles, err := s.roles.ListForUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

// Create inserts an account with its role set in one transaction. A verified
// email makes the account Activated straight away.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	roleIDs := uniqueIDs(in.RoleIDs)
	if len(roleIDs) == 0 {
		return nil, ErrInvalidRoleIDs
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, ErrPasswordTooWeak
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	status := domain.UserStatusUnactivated
	if in.EmailVerifiedAt != nil {
		status = domain.UserStatusActivated
	}

	var user *domain.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos ports.TxRepositories) error {
		created, err := repos.Users.Create(ctx, ports.CreateUserParams{
			Email:           email,
			Name:            in.Name,
			PasswordHash:    hash,
			PasswordSalt:    salt,
			Status:          status,
			EmailVerifiedAt: in.EmailVerifiedAt,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return err
		}
		roles, err := assignRoles(ctx, repos.Roles, created.ID, roleIDs)
		if err != nil {
			return err
		}
		created.Roles = roles
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update rewrites the account fields and replaces its whole role set. Either all
// of it is applied or none of it.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*domain.User, error) {
	roleIDs := uniqueIDs(in.RoleIDs)
	if len(roleIDs) == 0 {
		return nil, ErrInvalidRoleIDs
	}

	params := ports.UpdateUserParams{
		Name:            in.Name,
		Status:          domain.UserStatusUnactivated,
		EmailVerifiedAt: in.EmailVerifiedAt,
	}
	if in.EmailVerifiedAt != nil {
		params.Status = domain.UserStatusActivated
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		params.Email = &email
	}

	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, repos ports.TxRepositories) error {
		current, err := repos.Users.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		if params.Email != nil && *params.Email != current.Email {
			if _, err := repos.Users.FindByEmail(ctx, *params.Email); err == nil {
				return ErrDuplicateEmail
			} else if !isNotFound(err) {
				return err
			}
		}

		updated, err := repos.Users.Update(ctx, id, params)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return err
		}
		if err := repos.Roles.ClearUserRoles(ctx, id); err != nil {
			return fmt.Errorf("clear roles: %w", err)
		}
		roles, err := assignRoles(ctx, repos.Roles, id, roleIDs)
		if err != nil {
			return err
		}
		updated.Roles = roles
		user = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Ban(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context, repos ports.TxRepositories) error {
		if _, err := findUser(ctx, repos.Users, id); err != nil {
			return err
		}
		if err := repos.Users.UpdateStatus(ctx, id, domain.UserStatusBanned); err != nil {
			return err
		}
		return repos.Sessions.DeactivateUserSessions(ctx, id)
	})
}

func (s *UserService) Unban(ctx context.Context, id uuid.UUID) error {
	user, err := findUser(ctx, s.users, id)
	if err != nil {
		return err
	}
	return s.users.UpdateStatus(ctx, id, user.StatusAfterUnban())
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context, repos ports.TxRepositories) error {
		if _, err := findUser(ctx, repos.Users, id); err != nil {
			return err
		}
		if err := repos.Users.Delete(ctx, id); err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		return repos.Sessions.DeactivateUserSessions(ctx, id)
	})
}

// BatchDelete soft-deletes every listed account that still exists and returns
// how many were removed.
func (s *UserService) BatchDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, ErrInvalidUserIDs
	}
	var deleted int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context, repos ports.TxRepositories) error {
		n, err := repos.Users.DeleteMany(ctx, ids)
		if err != nil {
			return err
		}
		deleted = n
		return repos.Sessions.DeactivateUserSessions(ctx, ids...)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("users batch deleted", zap.Int("requested", len(ids)), zap.Int64("deleted", deleted))
	return deleted, nil
}

// ParseIDList splits a comma separated list of account ids.
func ParseIDList(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, ErrInvalidUserIDs
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrInvalidUserIDs
	}
	return ids, nil
}

func findUser(ctx context.Context, users ports.UserRepository, id uuid.UUID) (*domain.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func assignRoles(ctx context.Context, roles ports.RoleRepository, userID uuid.UUID, roleIDs []uuid.UUID) ([]domain.Role, error) {
	found, err := roles.FindByIDs(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	if len(found) != len(roleIDs) {
		return nil, ErrRoleNotFound
	}
	for _, role := range found {
		if err := roles.AssignUserRole(ctx, userID, role.ID); err != nil {
			return nil, fmt.Errorf("assign role %s: %w", role.Name, err)
		}
	}
	return found, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
