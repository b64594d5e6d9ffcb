package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type PasswordResetRepo struct {
	store *Store
}

func (r *PasswordResetRepo) Upsert(ctx context.Context, email, token string, updatedAt time.Time) (*domain.PasswordReset, error) {
	var reset domain.PasswordReset
	err := r.store.write(func(d *state, _ time.Time) error {
		for _, existing := range d.resets {
			if existing.Token == token && existing.Email != email {
				return ports.ErrDuplicate
			}
		}
		stamp := updatedAt.UTC()
		reset = domain.PasswordReset{Email: email, Token: token, CreatedAt: stamp, UpdatedAt: stamp}
		if existing, ok := d.resets[email]; ok {
			reset.CreatedAt = existing.CreatedAt
		}
		d.resets[email] = reset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepo) FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	return r.find(func(p domain.PasswordReset) bool { return p.Token == token })
}

func (r *PasswordResetRepo) FindByEmailAndToken(ctx context.Context, email, token string) (*domain.PasswordReset, error) {
	return r.find(func(p domain.PasswordReset) bool { return p.Email == email && p.Token == token })
}

func (r *PasswordResetRepo) DeleteByEmail(ctx context.Context, email string) error {
	return r.store.write(func(d *state, _ time.Time) error {
		delete(d.resets, email)
		return nil
	})
}

func (r *PasswordResetRepo) find(match func(domain.PasswordReset) bool) (*domain.PasswordReset, error) {
	var (
		found domain.PasswordReset
		ok    bool
	)
	r.store.read(func(d *state) {
		for _, p := range d.resets {
			if match(p) {
				found, ok = p, true
				return
			}
		}
	})
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &found, nil
}
