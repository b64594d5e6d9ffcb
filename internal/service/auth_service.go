package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
	"github.com/njprem/user_admin_backend/internal/util"
)

const (
	DefaultPasswordResetTTL = 720 * time.Minute
	defaultMemberRole       = "member"
)

type AuthServiceConfig struct {
	DefaultRole           string
	PasswordResetTTL      time.Duration
	RequireStrongPassword bool
	FrontendBaseURL       string
}

type LoginResult struct {
	User  *domain.User
	Token *IssuedToken
}

// AuthService drives the account lifecycle: registration, activation, login,
// password reset and password change.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	resets   ports.PasswordResetRepository
	tx       ports.Transactor
	verifier *CredentialVerifier
	sessions *SessionIssuer
	notifier ports.Notifier
	tokens   util.TokenGenerator
	logger   *zap.Logger
	now      func() time.Time

	defaultRole    string
	resetTTL       time.Duration
	strongPassword bool
	frontendBase   string
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	resets ports.PasswordResetRepository,
	tx ports.Transactor,
	sessions *SessionIssuer,
	notifier ports.Notifier,
	tokens util.TokenGenerator,
	logger *zap.Logger,
	cfg AuthServiceConfig,
) *AuthService {
	if tokens == nil {
		tokens = util.RandomTokenGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultRole := strings.TrimSpace(cfg.DefaultRole)
	if defaultRole == "" {
		defaultRole = defaultMemberRole
	}
	resetTTL := cfg.PasswordResetTTL
	if resetTTL <= 0 {
		resetTTL = DefaultPasswordResetTTL
	}
	return &AuthService{
		users:          users,
		roles:          roles,
		resets:         resets,
		tx:             tx,
		verifier:       NewCredentialVerifier(users),
		sessions:       sessions,
		notifier:       notifier,
		tokens:         tokens,
		logger:         logger,
		now:            time.Now,
		defaultRole:    defaultRole,
		resetTTL:       resetTTL,
		strongPassword: cfg.RequireStrongPassword,
		frontendBase:   strings.TrimRight(strings.TrimSpace(cfg.FrontendBaseURL), "/"),
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if err := s.checkNewPassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !isNotFound(err) {
		return nil, err
	}

	activationToken, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate activation token: %w", err)
	}
	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *domain.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos ports.TxRepositories) error {
		created, err := repos.Users.Create(ctx, ports.CreateUserParams{
			Email:           email,
			PasswordHash:    hash,
			PasswordSalt:    salt,
			Status:          domain.UserStatusUnactivated,
			ActivationToken: &activationToken,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return err
		}
		role, err := repos.Roles.GetOrCreateRole(ctx, s.defaultRole, "Default role for self registered accounts")
		if err != nil {
			return fmt.Errorf("resolve default role: %w", err)
		}
		if err := repos.Roles.AssignUserRole(ctx, created.ID, role.ID); err != nil {
			return fmt.Errorf("assign default role: %w", err)
		}
		created.Roles = []domain.Role{*role}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, domain.Notification{
		Kind:      domain.NotificationRegisterActivate,
		Recipient: user.Email,
		Payload: map[string]string{
			"token": activationToken,
			"link":  s.link("/register/activate/" + activationToken),
		},
	})
	return user, nil
}

func (s *AuthService) Activate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidActivationToken
	}
	user, err := s.users.FindByActivationToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidActivationToken
		}
		return nil, err
	}
	activated, err := s.users.Activate(ctx, user.ID, s.now())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidActivationToken
		}
		return nil, err
	}
	return activated, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.verifier.Verify(ctx, email, password, domain.UserStatusActivated)
	if err != nil {
		return nil, err
	}
	if err := s.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Authenticate resolves a bearer token into the account it was issued for,
// including its roles.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if user.Status == domain.UserStatusBanned {
		return nil, ErrAccountBanned
	}
	if err := s.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordReset, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	reset, err := s.resets.Upsert(ctx, user.Email, token, s.now())
	if err != nil {
		return nil, err
	}

	err = s.notifier.Send(ctx, domain.Notification{
		Kind:      domain.NotificationPasswordResetRequest,
		Recipient: user.Email,
		Payload: map[string]string{
			"token":              token,
			"link":               s.link("/password/reset/" + token),
			"expires_in_minutes": strconv.Itoa(int(s.resetTTL / time.Minute)),
		},
	})
	if err != nil {
		if delErr := s.resets.DeleteByEmail(ctx, user.Email); delErr != nil {
			s.logger.Warn("discard undelivered password reset", zap.String("email", user.Email), zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return reset, nil
}

// FindPasswordResetToken returns the outstanding request for token. A request past
// its validity window is deleted and reported as expired.
func (s *AuthService) FindPasswordResetToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrResetTokenNotFound
	}
	reset, err := s.resets.FindByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	if err := s.expireReset(ctx, reset); err != nil {
		return nil, err
	}
	return reset, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	token = strings.TrimSpace(token)
	if err := s.checkNewPassword(newPassword); err != nil {
		return nil, err
	}

	reset, err := s.resets.FindByEmailAndToken(ctx, email, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, err
	}
	if err := s.expireReset(ctx, reset); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, reset.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt

	if err := s.resets.DeleteByEmail(ctx, reset.Email); err != nil {
		return nil, err
	}
	if err := s.sessions.RevokeUsers(ctx, user.ID); err != nil {
		s.logger.Warn("revoke sessions after password reset", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.notify(ctx, domain.Notification{
		Kind:      domain.NotificationPasswordResetSuccess,
		Recipient: user.Email,
	})
	return user, nil
}

// ChangePassword re-verifies currentPassword for an authenticated account before
// storing newPassword.
func (s *AuthService) ChangePassword(ctx context.Context, account *domain.User, currentPassword, newPassword string) (*domain.User, error) {
	user, err := s.verifier.VerifyAccount(ctx, account, currentPassword)
	if err != nil {
		return nil, err
	}
	if err := s.checkNewPassword(newPassword); err != nil {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt
	user.Roles = account.Roles

	s.notify(ctx, domain.Notification{
		Kind:      domain.NotificationPasswordChangeSuccess,
		Recipient: user.Email,
	})
	return user, nil
}

func (s *AuthService) expireReset(ctx context.Context, reset *domain.PasswordReset) error {
	if !reset.Expired(s.now(), s.resetTTL) {
		return nil
	}
	if err := s.resets.DeleteByEmail(ctx, reset.Email); err != nil {
		return err
	}
	return ErrResetTokenExpired
}

func (s *AuthService) checkNewPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrPasswordTooWeak
	}
	if !s.strongPassword {
		return nil
	}
	if err := util.ValidateStrongPassword(password); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordTooWeak, err)
	}
	return nil
}

func (s *AuthService) loadRoles(ctx context.Context, user *domain.User) error {
	roles, err := s.roles.ListForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	user.Roles = roles
	return nil
}

func (s *AuthService) notify(ctx context.Context, n domain.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Error("notification failed",
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient),
			zap.Error(err),
		)
	}
}

func (s *AuthService) link(path string) string {
	if s.frontendBase == "" {
		return ""
	}
	return s.frontendBase + path
}
