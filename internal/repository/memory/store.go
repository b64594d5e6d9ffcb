// Package memory keeps every repository in process memory. It backs the
// STORAGE_DRIVER=memory mode and the HTTP tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type state struct {
	users       map[uuid.UUID]domain.User
	roles       map[uuid.UUID]domain.Role
	userRoles   map[uuid.UUID][]uuid.UUID
	resets      map[string]domain.PasswordReset
	sessions    map[string]domain.Session
	nextSession int64
}

func newState() state {
	return state{
		users:     make(map[uuid.UUID]domain.User),
		roles:     make(map[uuid.UUID]domain.Role),
		userRoles: make(map[uuid.UUID][]uuid.UUID),
		resets:    make(map[string]domain.PasswordReset),
		sessions:  make(map[string]domain.Session),
	}
}

func (s state) clone() state {
	out := newState()
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.roles {
		out.roles[k] = v
	}
	for k, v := range s.userRoles {
		out.userRoles[k] = append([]uuid.UUID(nil), v...)
	}
	for k, v := range s.resets {
		out.resets[k] = v
	}
	for k, v := range s.sessions {
		out.sessions[k] = v
	}
	out.nextSession = s.nextSession
	return out
}

// Store owns the shared state. Transactions are serialized and restore a snapshot
// when the callback fails.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

// SetClock replaces the time source used for created/updated stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UserRepo {
	return &UserRepo{store: s}
}

func (s *Store) Roles() *RoleRepo {
	return &RoleRepo{store: s}
}

func (s *Store) PasswordResets() *PasswordResetRepo {
	return &PasswordResetRepo{store: s}
}

func (s *Store) Sessions() *SessionRepo {
	return &SessionRepo{store: s}
}

func (s *Store) Transactor() *Transactor {
	return &Transactor{store: s}
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

func (s *Store) write(fn func(d *state, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data, s.now().UTC())
}

type Transactor struct {
	store *Store
}

func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepositories) error) (err error) {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	t.store.mu.RLock()
	snapshot := t.store.data.clone()
	t.store.mu.RUnlock()

	restore := func() {
		t.store.mu.Lock()
		t.store.data = snapshot
		t.store.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err = fn(ctx, ports.TxRepositories{
		Users:    t.store.Users(),
		Roles:    t.store.Roles(),
		Sessions: t.store.Sessions(),
	}); err != nil {
		restore()
		return err
	}
	return nil
}

var (
	_ ports.UserRepository          = (*UserRepo)(nil)
	_ ports.RoleRepository          = (*RoleRepo)(nil)
	_ ports.PasswordResetRepository = (*PasswordResetRepo)(nil)
	_ ports.SessionRepository       = (*SessionRepo)(nil)
	_ ports.Transactor              = (*Transactor)(nil)
)
