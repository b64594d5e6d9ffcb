package service

import (
	"context"
	"strings"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
	"github.com/njprem/user_admin_backend/internal/util"
)

// decoySalt keeps the unknown-email path doing the same hashing work as a real
// mismatch.
var decoySalt = []byte("credential-decoy")

// CredentialVerifier checks an email/password pair against the stored hash. Every
// failure collapses into ErrInvalidCredentials so callers cannot tell an unknown
// email from a wrong password or an account in the wrong state.
type CredentialVerifier struct {
	users ports.UserRepository
}

func NewCredentialVerifier(users ports.UserRepository) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

func (v *CredentialVerifier) Verify(ctx context.Context, email, password string, required domain.UserStatus) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			_, _ = util.HashPassword(password, decoySalt)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != required {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// VerifyAccount re-checks the password of an already authenticated account. Any
// status other than banned is accepted.
func (v *CredentialVerifier) VerifyAccount(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	if user == nil || password == "" {
		return nil, ErrInvalidCredentials
	}
	current, err := v.users.FindByID(ctx, user.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if current.Status == domain.UserStatusBanned {
		return nil, ErrInvalidCredentials
	}
	if !util.VerifyPassword(password, current.PasswordSalt, current.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return current, nil
}
