package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrInvalidActivationToken = errors.New("invalid activation token")
	ErrUnknownEmail           = errors.New("no account for this email")
	ErrResetTokenNotFound     = errors.New("password reset token not found")
	ErrResetTokenExpired      = errors.New("password reset token expired")
	ErrResetTokenInvalid      = errors.New("password reset token does not match email")
	ErrPasswordTooWeak        = errors.New("password does not meet requirements")
	ErrNotificationFailed     = errors.New("notification could not be delivered")

	ErrTokenInvalid     = errors.New("bearer token invalid")
	ErrTokenExpired     = errors.New("bearer token expired")
	ErrTokenBlacklisted = errors.New("bearer token has been revoked")
	ErrAccountBanned    = errors.New("account is banned")

	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidUserIDs = errors.New("invalid user id list")
	ErrInvalidRoleIDs = errors.New("invalid role id list")
	ErrRoleNotFound   = errors.New("role not found")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, ports.ErrDuplicate) || errors.Is(err, ErrDuplicateEmail)
}
