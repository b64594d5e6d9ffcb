package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/util"
)

func newUserServiceForTests(users *fakeUserRepo, roles *fakeRoleRepo, sessions *fakeSessionRepo) (*UserService, *fakeTransactor) {
	if roles == nil {
		roles = &fakeRoleRepo{}
	}
	if sessions == nil {
		sessions = &fakeSessionRepo{}
	}
	tx := &fakeTransactor{users: users, roles: roles, sessions: sessions}
	return NewUserService(users, roles, tx, nil), tx
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	userA := domain.User{ID: uuid.New(), Email: "a@example.com"}
	userB := domain.User{ID: uuid.New(), Email: "b@example.com"}
	member := domain.Role{ID: uuid.New(), Name: "member"}
	repo := &fakeUserRepo{listResult: []domain.User{userA, userB}, countValue: 42}
	roles := &fakeRoleRepo{listForUsers: map[uuid.UUID][]domain.Role{userA.ID: {member}}}
	svc, _ := newUserServiceForTests(repo, roles, nil)

	page, err := svc.List(ctx, 3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.listInputs) != 1 || repo.listInputs[0].limit != 10 || repo.listInputs[0].offset != 20 {
		t.Fatalf("unexpected list inputs: %+v", repo.listInputs)
	}
	if page.Total != 42 || page.CurrentPage != 3 || page.PerPage != 10 || page.LastPage() != 5 {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
	if !page.Users[0].HasRole(member.ID) || len(page.Users[1].Roles) != 0 {
		t.Fatal("expected roles attached per user")
	}

	t.Run("defaults and clamps", func(t *testing.T) {
		repo := &fakeUserRepo{}
		svc, _ := newUserServiceForTests(repo, nil, nil)

		if _, err := svc.List(ctx, 0, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.List(ctx, 1, 1000); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.listInputs[0].limit != DefaultPerPage || repo.listInputs[0].offset != 0 {
			t.Fatalf("expected default page size, got %+v", repo.listInputs[0])
		}
		if repo.listInputs[1].limit != MaxPerPage {
			t.Fatalf("expected page size clamp, got %+v", repo.listInputs[1])
		}
	})
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	admin := domain.Role{ID: uuid.New(), Name: "admin"}

	t.Run("verified email activates account", func(t *testing.T) {
		users := &fakeUserRepo{}
		roles := &fakeRoleRepo{rolesByID: map[uuid.UUID]domain.Role{admin.ID: admin}}
		svc, tx := newUserServiceForTests(users, roles, nil)
		verified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		user, err := svc.Create(ctx, CreateUserInput{
			Email:           " new@x.com ",
			Password:        "secret",
			EmailVerifiedAt: &verified,
			RoleIDs:         []uuid.UUID{admin.ID, admin.ID},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tx.calls != 1 {
			t.Fatalf("expected a transaction, got %d", tx.calls)
		}
		if users.createInput.Email != "new@x.com" || users.createInput.Status != domain.UserStatusActivated {
			t.Fatalf("unexpected create params: %+v", users.createInput)
		}
		if users.createInput.ActivationToken != nil {
			t.Fatal("admin created accounts carry no activation token")
		}
		if !util.VerifyPassword("secret", users.createInput.PasswordSalt, users.createInput.PasswordHash) {
			t.Fatal("expected password to be hashed")
		}
		if len(roles.assignedPairs) != 1 || !user.HasRole(admin.ID) {
			t.Fatalf("expected single role assignment, got %+v", roles.assignedPairs)
		}
	})

	t.Run("unverified email stays unactivated", func(t *testing.T) {
		users := &fakeUserRepo{}
		roles := &fakeRoleRepo{rolesByID: map[uuid.UUID]domain.Role{admin.ID: admin}}
		svc, _ := newUserServiceForTests(users, roles, nil)
		if _, err := svc.Create(ctx, CreateUserInput{Email: "n@x.com", Password: "secret", RoleIDs: []uuid.UUID{admin.ID}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if users.createInput.Status != domain.UserStatusUnactivated {
			t.Fatalf("expected unactivated status, got %v", users.createInput.Status)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &fakeUserRepo{findByEmailResult: &domain.User{ID: uuid.New(), Email: "n@x.com"}}
		svc, tx := newUserServiceForTests(users, nil, nil)
		_, err := svc.Create(ctx, CreateUserInput{Email: "n@x.com", Password: "secret", RoleIDs: []uuid.UUID{admin.ID}})
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
		if tx.calls != 0 {
			t.Fatal("expected no transaction")
		}
	})

	t.Run("missing roles", func(t *testing.T) {
		svc, _ := newUserServiceForTests(&fakeUserRepo{}, nil, nil)
		_, err := svc.Create(ctx, CreateUserInput{Email: "n@x.com", Password: "secret"})
		if !errors.Is(err, ErrInvalidRoleIDs) {
			t.Fatalf("expected ErrInvalidRoleIDs, got %v", err)
		}
	})

	t.Run("unknown role aborts", func(t *testing.T) {
		svc, tx := newUserServiceForTests(&fakeUserRepo{}, &fakeRoleRepo{}, nil)
		_, err := svc.Create(ctx, CreateUserInput{Email: "n@x.com", Password: "secret", RoleIDs: []uuid.UUID{uuid.New()}})
		if !errors.Is(err, ErrRoleNotFound) || !errors.Is(tx.lastErr, ErrRoleNotFound) {
			t.Fatalf("expected ErrRoleNotFound from the transaction, got %v", err)
		}
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	member := domain.Role{ID: uuid.New(), Name: "member"}
	existing := &domain.User{ID: uuid.New(), Email: "a@x.com", Status: domain.UserStatusActivated}

	t.Run("empty role ids", func(t *testing.T) {
		users := &fakeUserRepo{findByIDResult: existing}
		svc, tx := newUserServiceForTests(users, nil, nil)
		_, err := svc.Update(ctx, existing.ID, UpdateUserInput{})
		if !errors.Is(err, ErrInvalidRoleIDs) {
			t.Fatalf("expected ErrInvalidRoleIDs, got %v", err)
		}
		if tx.calls != 0 {
			t.Fatal("expected validation before the transaction")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newUserServiceForTests(&fakeUserRepo{}, nil, nil)
		_, err := svc.Update(ctx, uuid.New(), UpdateUserInput{RoleIDs: []uuid.UUID{member.ID}})
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("replaces role set", func(t *testing.T) {
		users := &fakeUserRepo{findByIDResult: existing}
		roles := &fakeRoleRepo{rolesByID: map[uuid.UUID]domain.Role{member.ID: member}}
		svc, _ := newUserServiceForTests(users, roles, nil)
		name := "Alice"

		updated, err := svc.Update(ctx, existing.ID, UpdateUserInput{Name: &name, RoleIDs: []uuid.UUID{member.ID}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if users.updateInput.Status != domain.UserStatusUnactivated {
			t.Fatalf("expected unverified update to reset status, got %v", users.updateInput.Status)
		}
		if len(roles.clearedUsers) != 1 || roles.clearedUsers[0] != existing.ID {
			t.Fatal("expected previous roles cleared")
		}
		if !updated.HasRole(member.ID) {
			t.Fatal("expected new role on returned user")
		}
	})

	t.Run("email taken by another account", func(t *testing.T) {
		other := &domain.User{ID: uuid.New(), Email: "b@x.com"}
		users := &fakeUserRepo{findByIDResult: existing, findByEmailResult: other}
		svc, _ := newUserServiceForTests(users, &fakeRoleRepo{rolesByID: map[uuid.UUID]domain.Role{member.ID: member}}, nil)
		email := "b@x.com"
		_, err := svc.Update(ctx, existing.ID, UpdateUserInput{Email: &email, RoleIDs: []uuid.UUID{member.ID}})
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
		if users.updateInput != nil {
			t.Fatal("expected no update")
		}
	})

	t.Run("role assignment failure surfaces", func(t *testing.T) {
		users := &fakeUserRepo{findByIDResult: existing}
		roles := &fakeRoleRepo{rolesByID: map[uuid.UUID]domain.Role{member.ID: member}, assignErr: errors.New("db gone")}
		svc, tx := newUserServiceForTests(users, roles, nil)
		_, err := svc.Update(ctx, existing.ID, UpdateUserInput{RoleIDs: []uuid.UUID{member.ID}})
		if err == nil || tx.lastErr == nil {
			t.Fatal("expected transaction to fail")
		}
	})
}

func TestBanAndUnban(t *testing.T) {
	ctx := context.Background()
	verified := time.Now()

	t.Run("ban revokes sessions", func(t *testing.T) {
		user := &domain.User{ID: uuid.New(), Status: domain.UserStatusActivated}
		users := &fakeUserRepo{findByIDResult: user}
		sessions := &fakeSessionRepo{}
		svc, _ := newUserServiceForTests(users, nil, sessions)

		if err := svc.Ban(ctx, user.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(users.statusUpdates) != 1 || users.statusUpdates[0].status != domain.UserStatusBanned {
			t.Fatalf("unexpected status updates: %+v", users.statusUpdates)
		}
		if len(sessions.deactivatedUsers) != 1 || sessions.deactivatedUsers[0] != user.ID {
			t.Fatal("expected sessions revoked")
		}
	})

	t.Run("ban unknown user", func(t *testing.T) {
		svc, _ := newUserServiceForTests(&fakeUserRepo{}, nil, nil)
		if err := svc.Ban(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	cases := []struct {
		name       string
		verifiedAt *time.Time
		want       domain.UserStatus
	}{
		{name: "verified returns to activated", verifiedAt: &verified, want: domain.UserStatusActivated},
		{name: "unverified returns to unactivated", verifiedAt: nil, want: domain.UserStatusUnactivated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &domain.User{ID: uuid.New(), Status: domain.UserStatusBanned, EmailVerifiedAt: tc.verifiedAt}
			users := &fakeUserRepo{findByIDResult: user}
			svc, _ := newUserServiceForTests(users, nil, nil)
			if err := svc.Unban(ctx, user.ID); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(users.statusUpdates) != 1 || users.statusUpdates[0].status != tc.want {
				t.Fatalf("expected status %v, got %+v", tc.want, users.statusUpdates)
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		user := &domain.User{ID: uuid.New()}
		users := &fakeUserRepo{findByIDResult: user}
		sessions := &fakeSessionRepo{}
		svc, _ := newUserServiceForTests(users, nil, sessions)
		if err := svc.Delete(ctx, user.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if users.deleteInput != user.ID || len(sessions.deactivatedUsers) != 1 {
			t.Fatal("expected delete and session revocation")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newUserServiceForTests(&fakeUserRepo{}, nil, nil)
		if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestBatchDelete(t *testing.T) {
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	users := &fakeUserRepo{deleteManyResult: 2}
	sessions := &fakeSessionRepo{}
	svc, _ := newUserServiceForTests(users, nil, sessions)

	n, err := svc.BatchDelete(ctx, []uuid.UUID{a, b, a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(users.deleteManyInput) != 2 {
		t.Fatalf("expected de-duplicated ids, got %v", users.deleteManyInput)
	}
	if len(sessions.deactivatedUsers) != 2 {
		t.Fatal("expected sessions revoked for every id")
	}

	if _, err := svc.BatchDelete(ctx, nil); !errors.Is(err, ErrInvalidUserIDs) {
		t.Fatalf("expected ErrInvalidUserIDs, got %v", err)
	}
}

func TestParseIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "two ids", raw: a.String() + "," + b.String(), want: 2},
		{name: "spaces and trailing comma", raw: " " + a.String() + " ,", want: 1},
		{name: "empty", raw: "", wantErr: true},
		{name: "only commas", raw: ",,", wantErr: true},
		{name: "garbage", raw: a.String() + ",42", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ids, err := ParseIDList(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidUserIDs) {
					t.Fatalf("expected ErrInvalidUserIDs, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(ids) != tc.want {
				t.Fatalf("expected %d ids, got %d", tc.want, len(ids))
			}
		})
	}
}
