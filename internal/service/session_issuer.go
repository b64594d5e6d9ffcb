package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
	"github.com/njprem/user_admin_backend/internal/util"
)

const TokenTypeBearer = "bearer"

type IssuedToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"-"`
}

// SessionIssuer mints bearer tokens and tracks them as sessions so they can be
// revoked before they expire.
type SessionIssuer struct {
	jwt      *util.JWTManager
	sessions ports.SessionRepository
}

func NewSessionIssuer(jwtManager *util.JWTManager, sessions ports.SessionRepository) *SessionIssuer {
	return &SessionIssuer{jwt: jwtManager, sessions: sessions}
}

func (s *SessionIssuer) ExpiresIn() int64 {
	return int64(s.jwt.TTL() / time.Second)
}

func (s *SessionIssuer) Issue(ctx context.Context, user *domain.User) (*IssuedToken, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}
	return &IssuedToken{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresIn: s.ExpiresIn(),
		ExpiresAt: expiresAt,
	}, nil
}

// Validate returns the claims of a token that is well formed, unexpired and still
// backed by an active session.
func (s *SessionIssuer) Validate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		if errors.Is(err, util.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if _, err := s.sessions.FindActiveSession(ctx, token); err != nil {
		if isNotFound(err) {
			return nil, ErrTokenBlacklisted
		}
		return nil, err
	}
	return claims, nil
}

func (s *SessionIssuer) Revoke(ctx context.Context, token string) error {
	return s.sessions.DeactivateSession(ctx, token)
}

func (s *SessionIssuer) RevokeUsers(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return s.sessions.DeactivateUserSessions(ctx, userIDs...)
}
