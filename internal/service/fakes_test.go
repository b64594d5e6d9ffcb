package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type fakeUserRepo struct {
	createInput  *ports.CreateUserParams
	createResult *domain.User
	createErr    error

	findByEmailInput  string
	findByEmailResult *domain.User
	findByEmailErr    error

	findByIDInput  uuid.UUID
	findByIDResult *domain.User
	findByIDErr    error

	findByTokenInput  string
	findByTokenResult *domain.User
	findByTokenErr    error

	activateInput struct {
		id         uuid.UUID
		verifiedAt time.Time
	}
	activateResult *domain.User
	activateErr    error

	updateInput  *ports.UpdateUserParams
	updateResult *domain.User
	updateErr    error

	updatePasswordInput struct {
		id   uuid.UUID
		hash []byte
		salt []byte
	}
	updatePasswordErr error

	statusUpdates []struct {
		id     uuid.UUID
		status domain.UserStatus
	}
	updateStatusErr error

	listInputs []struct {
		limit  int
		offset int
	}
	listResult []domain.User
	listErr    error
	countValue int64
	countErr   error

	deleteInput uuid.UUID
	deleteErr   error

	deleteManyInput  []uuid.UUID
	deleteManyResult int64
	deleteManyErr    error
}

func (f *fakeUserRepo) Create(ctx context.Context, params ports.CreateUserParams) (*domain.User, error) {
	f.createInput = &params
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, nil
	}
	return &domain.User{
		ID:              uuid.New(),
		Email:           params.Email,
		Name:            params.Name,
		PasswordHash:    params.PasswordHash,
		PasswordSalt:    params.PasswordSalt,
		Status:          params.Status,
		ActivationToken: params.ActivationToken,
		EmailVerifiedAt: params.EmailVerifiedAt,
	}, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.findByEmailInput = email
	if f.findByEmailErr != nil {
		return nil, f.findByEmailErr
	}
	if f.findByEmailResult == nil {
		return nil, sql.ErrNoRows
	}
	return f.findByEmailResult, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.findByIDInput = id
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	if f.findByIDResult == nil {
		return nil, sql.ErrNoRows
	}
	return f.findByIDResult, nil
}

func (f *fakeUserRepo) FindByActivationToken(ctx context.Context, token string) (*domain.User, error) {
	f.findByTokenInput = token
	if f.findByTokenErr != nil {
		return nil, f.findByTokenErr
	}
	if f.findByTokenResult == nil {
		return nil, sql.ErrNoRows
	}
	return f.findByTokenResult, nil
}

func (f *fakeUserRepo) Activate(ctx context.Context, id uuid.UUID, verifiedAt time.Time) (*domain.User, error) {
	f.activateInput.id = id
	f.activateInput.verifiedAt = verifiedAt
	return f.activateResult, f.activateErr
}

func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, params ports.UpdateUserParams) (*domain.User, error) {
	f.updateInput = &params
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateResult != nil {
		return f.updateResult, nil
	}
	return &domain.User{ID: id, Status: params.Status, EmailVerifiedAt: params.EmailVerifiedAt}, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	f.updatePasswordInput.id = id
	f.updatePasswordInput.hash = append([]byte(nil), passwordHash...)
	f.updatePasswordInput.salt = append([]byte(nil), passwordSalt...)
	return f.updatePasswordErr
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	f.statusUpdates = append(f.statusUpdates, struct {
		id     uuid.UUID
		status domain.UserStatus
	}{id: id, status: status})
	return f.updateStatusErr
}

func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	f.listInputs = append(f.listInputs, struct {
		limit  int
		offset int
	}{limit: limit, offset: offset})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.User(nil), f.listResult...), nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return f.countValue, f.countErr
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleteInput = id
	return f.deleteErr
}

func (f *fakeUserRepo) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	f.deleteManyInput = append([]uuid.UUID(nil), ids...)
	return f.deleteManyResult, f.deleteManyErr
}

type fakeRoleRepo struct {
	roleResult *domain.Role
	roleErr    error

	rolesByID  map[uuid.UUID]domain.Role
	findIDsErr error

	listForUser    []domain.Role
	listForUserErr error
	listForUsers   map[uuid.UUID][]domain.Role

	assignedPairs []struct {
		userID uuid.UUID
		roleID uuid.UUID
	}
	assignErr error

	clearedUsers []uuid.UUID
	clearErr     error
}

func (f *fakeRoleRepo) GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	if f.roleResult != nil {
		return f.roleResult, nil
	}
	return &domain.Role{ID: uuid.New(), Name: name}, nil
}

func (f *fakeRoleRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Role, error) {
	if f.findIDsErr != nil {
		return nil, f.findIDsErr
	}
	var roles []domain.Role
	for _, id := range ids {
		if role, ok := f.rolesByID[id]; ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (f *fakeRoleRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	return f.listForUser, f.listForUserErr
}

func (f *fakeRoleRepo) ListForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.Role, error) {
	return f.listForUsers, nil
}

func (f *fakeRoleRepo) AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	f.assignedPairs = append(f.assignedPairs, struct {
		userID uuid.UUID
		roleID uuid.UUID
	}{userID: userID, roleID: roleID})
	return f.assignErr
}

func (f *fakeRoleRepo) ClearUserRoles(ctx context.Context, userID uuid.UUID) error {
	f.clearedUsers = append(f.clearedUsers, userID)
	return f.clearErr
}

type fakeSessionRepo struct {
	createdSessions []struct {
		userID    uuid.UUID
		token     string
		expiresAt time.Time
	}
	createErr error

	findActiveToken  string
	findActiveResult *domain.Session
	findActiveErr    error

	deactivatedToken string
	deactivateErr    error

	deactivatedUsers []uuid.UUID
	deactivateAllErr error
}

func (f *fakeSessionRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	f.createdSessions = append(f.createdSessions, struct {
		userID    uuid.UUID
		token     string
		expiresAt time.Time
	}{userID: userID, token: token, expiresAt: expiresAt})
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Session{ID: int64(len(f.createdSessions)), UserID: userID, Token: token, ExpiresAt: expiresAt, IsActive: true}, nil
}

func (f *fakeSessionRepo) DeactivateSession(ctx context.Context, token string) error {
	f.deactivatedToken = token
	return f.deactivateErr
}

func (f *fakeSessionRepo) DeactivateUserSessions(ctx context.Context, userIDs ...uuid.UUID) error {
	f.deactivatedUsers = append(f.deactivatedUsers, userIDs...)
	return f.deactivateAllErr
}

func (f *fakeSessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	f.findActiveToken = token
	if f.findActiveErr != nil {
		return nil, f.findActiveErr
	}
	if f.findActiveResult == nil {
		return nil, sql.ErrNoRows
	}
	return f.findActiveResult, nil
}

type fakePasswordResetRepo struct {
	upserts []struct {
		email     string
		token     string
		updatedAt time.Time
	}
	upsertErr error

	byToken      map[string]*domain.PasswordReset
	findErr      error
	deleteCalls  []string
	deleteErr    error
	lastFindPair [2]string
}

func (f *fakePasswordResetRepo) Upsert(ctx context.Context, email, token string, updatedAt time.Time) (*domain.PasswordReset, error) {
	f.upserts = append(f.upserts, struct {
		email     string
		token     string
		updatedAt time.Time
	}{email: email, token: token, updatedAt: updatedAt})
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return &domain.PasswordReset{Email: email, Token: token, CreatedAt: updatedAt, UpdatedAt: updatedAt}, nil
}

func (f *fakePasswordResetRepo) FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if reset, ok := f.byToken[token]; ok {
		return reset, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakePasswordResetRepo) FindByEmailAndToken(ctx context.Context, email, token string) (*domain.PasswordReset, error) {
	f.lastFindPair = [2]string{email, token}
	if f.findErr != nil {
		return nil, f.findErr
	}
	if reset, ok := f.byToken[token]; ok && reset.Email == email {
		return reset, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakePasswordResetRepo) DeleteByEmail(ctx context.Context, email string) error {
	f.deleteCalls = append(f.deleteCalls, email)
	return f.deleteErr
}

type fakeNotifier struct {
	sent []domain.Notification
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, n domain.Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}

func (f *fakeNotifier) last() domain.Notification {
	if len(f.sent) == 0 {
		return domain.Notification{}
	}
	return f.sent[len(f.sent)-1]
}

// fakeTransactor hands the same fakes to the callback and records the outcome.
type fakeTransactor struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	sessions ports.SessionRepository

	calls   int
	lastErr error
}

func (f *fakeTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepositories) error) error {
	f.calls++
	f.lastErr = fn(ctx, ports.TxRepositories{Users: f.users, Roles: f.roles, Sessions: f.sessions})
	return f.lastErr
}

// sequenceTokens returns tok-1, tok-2, ...
type sequenceTokens struct {
	n   int
	err error
}

func (s *sequenceTokens) Generate() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.n++
	return fmt.Sprintf("tok-%d", s.n), nil
}
