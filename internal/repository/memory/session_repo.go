package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type SessionRepo struct {
	store *Store
}

func (r *SessionRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	var session domain.Session
	err := r.store.write(func(d *state, now time.Time) error {
		if _, ok := d.sessions[token]; ok {
			return ports.ErrDuplicate
		}
		d.nextSession++
		session = domain.Session{
			ID:        d.nextSession,
			UserID:    userID,
			Token:     token,
			CreatedAt: now,
			ExpiresAt: expiresAt.UTC(),
			IsActive:  true,
		}
		d.sessions[token] = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepo) DeactivateSession(ctx context.Context, token string) error {
	return r.store.write(func(d *state, _ time.Time) error {
		if session, ok := d.sessions[token]; ok {
			session.IsActive = false
			d.sessions[token] = session
		}
		return nil
	})
}

func (r *SessionRepo) DeactivateUserSessions(ctx context.Context, userIDs ...uuid.UUID) error {
	targets := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		targets[id] = struct{}{}
	}
	return r.store.write(func(d *state, _ time.Time) error {
		for token, session := range d.sessions {
			if _, ok := targets[session.UserID]; ok && session.IsActive {
				session.IsActive = false
				d.sessions[token] = session
			}
		}
		return nil
	})
}

// FindActiveSession only returns sessions that are active and not past expiry.
func (r *SessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	var (
		session domain.Session
		ok      bool
	)
	r.store.read(func(d *state) {
		session, ok = d.sessions[token]
		if ok && (!session.IsActive || !session.ExpiresAt.After(r.store.now())) {
			ok = false
		}
	})
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &session, nil
}
