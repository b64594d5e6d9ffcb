package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/memory"
	"github.com/njprem/user_admin_backend/internal/util"
)

type lifecycleFixture struct {
	store    *memory.Store
	auth     *AuthService
	users    *UserService
	notifier *fakeNotifier
}

func newLifecycleFixture(t *testing.T, ttl time.Duration) *lifecycleFixture {
	t.Helper()
	store := memory.NewStore()
	notifier := &fakeNotifier{}
	issuer := NewSessionIssuer(util.NewJWTManager("scenario-secret", ttl), store.Sessions())
	auth := NewAuthService(store.Users(), store.Roles(), store.PasswordResets(), store.Transactor(), issuer, notifier, util.RandomTokenGenerator{}, nil, AuthServiceConfig{})
	users := NewUserService(store.Users(), store.Roles(), store.Transactor(), nil)
	return &lifecycleFixture{store: store, auth: auth, users: users, notifier: notifier}
}

func (f *lifecycleFixture) lastToken(t *testing.T, kind domain.NotificationKind) string {
	t.Helper()
	for i := len(f.notifier.sent) - 1; i >= 0; i-- {
		if f.notifier.sent[i].Kind == kind {
			return f.notifier.sent[i].Payload["token"]
		}
	}
	t.Fatalf("no %s notification sent", kind)
	return ""
}

func TestRegisterActivateLoginScenario(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, 90*time.Minute)

	if _, err := f.auth.Register(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.auth.Login(ctx, "a@x.com", "p1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected login before activation to fail, got %v", err)
	}

	token := f.lastToken(t, domain.NotificationRegisterActivate)
	if len(token) != util.TokenLength {
		t.Fatalf("expected %d character activation token, got %d", util.TokenLength, len(token))
	}
	if _, err := f.auth.Activate(ctx, token); err != nil {
		t.Fatalf("activate: %v", err)
	}

	result, err := f.auth.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token.ExpiresIn != 90*60 {
		t.Fatalf("expected expires_in %d, got %d", 90*60, result.Token.ExpiresIn)
	}
	if !result.User.HasRoleName(defaultMemberRole) {
		t.Fatalf("expected default role, got %v", result.User.RoleNames())
	}

	authenticated, err := f.auth.Authenticate(ctx, result.Token.Token)
	if err != nil || authenticated.Email != "a@x.com" {
		t.Fatalf("expected token to authenticate, got %v", err)
	}
	if err := f.auth.Logout(ctx, result.Token.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.auth.Authenticate(ctx, result.Token.Token); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected logged out token to be blacklisted, got %v", err)
	}
}

func TestActivationIsSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, time.Hour)

	if _, err := f.auth.Register(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token := f.lastToken(t, domain.NotificationRegisterActivate)
	if _, err := f.auth.Activate(ctx, token); err != nil {
		t.Fatalf("first activation: %v", err)
	}
	if _, err := f.auth.Activate(ctx, token); !errors.Is(err, ErrInvalidActivationToken) {
		t.Fatalf("expected replay to fail, got %v", err)
	}
}

func TestDuplicateRegistrationLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, time.Hour)

	if _, err := f.auth.Register(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.auth.Register(ctx, "a@x.com", "other"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	count, _ := f.store.Users().Count(ctx)
	if count != 1 {
		t.Fatalf("expected one account, got %d", count)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected a single activation notification, got %d", len(f.notifier.sent))
	}
}

func TestSecondResetRequestInvalidatesFirst(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, time.Hour)

	if _, err := f.auth.Register(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.auth.Activate(ctx, f.lastToken(t, domain.NotificationRegisterActivate)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	login, err := f.auth.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	first, err := f.auth.RequestPasswordReset(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("first reset request: %v", err)
	}
	second, err := f.auth.RequestPasswordReset(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("second reset request: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("expected a fresh token for the second request")
	}

	if _, err := f.auth.ResetPassword(ctx, "a@x.com", first.Token, "p2"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected first token to be rejected, got %v", err)
	}
	if _, err := f.auth.ResetPassword(ctx, "a@x.com", second.Token, "p2"); err != nil {
		t.Fatalf("reset with second token: %v", err)
	}
	if _, err := f.auth.FindPasswordResetToken(ctx, second.Token); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected reset record to be consumed, got %v", err)
	}

	if _, err := f.auth.Login(ctx, "a@x.com", "p1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := f.auth.Login(ctx, "a@x.com", "p2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := f.auth.Authenticate(ctx, login.Token.Token); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected pre-reset session revoked, got %v", err)
	}
}

func TestExpiredResetRequestRemovedOnFirstAccess(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, time.Hour)

	if _, err := f.auth.Register(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	reset, err := f.auth.RequestPasswordReset(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("reset request: %v", err)
	}

	f.auth.now = func() time.Time { return time.Now().Add(721 * time.Minute) }
	if _, err := f.auth.FindPasswordResetToken(ctx, reset.Token); !errors.Is(err, ErrResetTokenExpired) {
		t.Fatalf("expected ErrResetTokenExpired, got %v", err)
	}
	if _, err := f.auth.FindPasswordResetToken(ctx, reset.Token); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected expired record to be gone, got %v", err)
	}
}

func TestAdminUpdateRollsBackOnRoleFailure(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, time.Hour)

	member, err := f.store.Roles().GetOrCreateRole(ctx, "member", "")
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	verified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created, err := f.users.Create(ctx, CreateUserInput{
		Email:           "a@x.com",
		Password:        "p1",
		EmailVerifiedAt: &verified,
		RoleIDs:         []uuid.UUID{member.ID},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	name := "Changed"
	email := "changed@x.com"
	_, err = f.users.Update(ctx, created.ID, UpdateUserInput{
		Name:    &name,
		Email:   &email,
		RoleIDs: []uuid.UUID{member.ID, uuid.New()},
	})
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	reloaded, err := f.users.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Email != "a@x.com" || reloaded.Name != nil || reloaded.Status != domain.UserStatusActivated {
		t.Fatalf("expected account fields unchanged, got %+v", reloaded)
	}
	if len(reloaded.Roles) != 1 || reloaded.Roles[0].ID != member.ID {
		t.Fatalf("expected role set unchanged, got %+v", reloaded.Roles)
	}
}

func TestBannedAccountLosesAccess(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, time.Hour)

	member, _ := f.store.Roles().GetOrCreateRole(ctx, "member", "")
	verified := time.Now()
	created, err := f.users.Create(ctx, CreateUserInput{Email: "a@x.com", Password: "p1", EmailVerifiedAt: &verified, RoleIDs: []uuid.UUID{member.ID}})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	login, err := f.auth.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.users.Ban(ctx, created.ID); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if _, err := f.auth.Authenticate(ctx, login.Token.Token); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected session revoked by ban, got %v", err)
	}
	if _, err := f.auth.Login(ctx, "a@x.com", "p1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected banned login to fail, got %v", err)
	}

	if err := f.users.Unban(ctx, created.ID); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if _, err := f.auth.Login(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("expected verified account to log in after unban, got %v", err)
	}
}
