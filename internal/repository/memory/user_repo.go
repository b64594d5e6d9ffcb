package memory

import (
	"bytes"
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type UserRepo struct {
	store *Store
}

func (r *UserRepo) Create(ctx context.Context, params ports.CreateUserParams) (*domain.User, error) {
	var created domain.User
	err := r.store.write(func(d *state, now time.Time) error {
		for _, u := range d.users {
			if u.Email == params.Email {
				return ports.ErrDuplicate
			}
			if params.ActivationToken != nil && u.ActivationToken != nil && *u.ActivationToken == *params.ActivationToken {
				return ports.ErrDuplicate
			}
		}
		created = domain.User{
			ID:              uuid.New(),
			Email:           params.Email,
			Name:            params.Name,
			PasswordHash:    bytes.Clone(params.PasswordHash),
			PasswordSalt:    bytes.Clone(params.PasswordSalt),
			Status:          params.Status,
			ActivationToken: params.ActivationToken,
			EmailVerifiedAt: params.EmailVerifiedAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		d.users[created.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *UserRepo) FindByActivationToken(ctx context.Context, token string) (*domain.User, error) {
	return r.find(func(u domain.User) bool {
		return u.ActivationToken != nil && *u.ActivationToken == token
	})
}

func (r *UserRepo) Activate(ctx context.Context, id uuid.UUID, verifiedAt time.Time) (*domain.User, error) {
	return r.modify(id, func(u *domain.User) error {
		if u.ActivationToken == nil {
			return sql.ErrNoRows
		}
		verified := verifiedAt.UTC()
		u.Status = domain.UserStatusActivated
		u.ActivationToken = nil
		u.EmailVerifiedAt = &verified
		return nil
	})
}

func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, params ports.UpdateUserParams) (*domain.User, error) {
	var taken bool
	if params.Email != nil {
		r.store.read(func(d *state) {
			for _, u := range d.users {
				if u.ID != id && u.Email == *params.Email {
					taken = true
				}
			}
		})
	}
	if taken {
		return nil, ports.ErrDuplicate
	}
	return r.modify(id, func(u *domain.User) error {
		if params.Name != nil {
			u.Name = params.Name
		}
		if params.Email != nil {
			u.Email = *params.Email
		}
		if params.EmailVerifiedAt != nil {
			verified := params.EmailVerifiedAt.UTC()
			u.EmailVerifiedAt = &verified
		}
		u.Status = params.Status
		return nil
	})
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	_, err := r.modify(id, func(u *domain.User) error {
		u.PasswordHash = bytes.Clone(passwordHash)
		u.PasswordSalt = bytes.Clone(passwordSalt)
		return nil
	})
	return err
}

func (r *UserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	_, err := r.modify(id, func(u *domain.User) error {
		u.Status = status
		return nil
	})
	return err
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	var users []domain.User
	r.store.read(func(d *state) {
		for _, u := range d.users {
			if u.DeletedAt == nil {
				users = append(users, u)
			}
		}
	})
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.String() < users[j].ID.String()
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	if offset >= len(users) {
		return []domain.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(users) {
		end = len(users)
	}
	return users[offset:end], nil
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	r.store.read(func(d *state) {
		for _, u := range d.users {
			if u.DeletedAt == nil {
				n++
			}
		}
	})
	return n, nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.modify(id, func(u *domain.User) error {
		deletedAt := r.store.now().UTC()
		u.DeletedAt = &deletedAt
		return nil
	})
	return err
}

func (r *UserRepo) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	err := r.store.write(func(d *state, now time.Time) error {
		for _, id := range ids {
			u, ok := d.users[id]
			if !ok || u.DeletedAt != nil {
				continue
			}
			deletedAt := now
			u.DeletedAt = &deletedAt
			u.UpdatedAt = now
			d.users[id] = u
			n++
		}
		return nil
	})
	return n, err
}

func (r *UserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	var (
		found domain.User
		ok    bool
	)
	r.store.read(func(d *state) {
		for _, u := range d.users {
			if u.DeletedAt == nil && match(u) {
				found, ok = u, true
				return
			}
		}
	})
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &found, nil
}

func (r *UserRepo) modify(id uuid.UUID, fn func(u *domain.User) error) (*domain.User, error) {
	var updated domain.User
	err := r.store.write(func(d *state, now time.Time) error {
		u, ok := d.users[id]
		if !ok || u.DeletedAt != nil {
			return sql.ErrNoRows
		}
		if err := fn(&u); err != nil {
			return err
		}
		u.UpdatedAt = now
		d.users[id] = u
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
