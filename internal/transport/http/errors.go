package http

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/service"
	"github.com/njprem/user_admin_backend/internal/util"
)

const (
	CodeInternal             = "GENR0001"
	CodeValidation           = "GENR0002"
	CodeInvalidCredentials   = "AUTH0001"
	CodeInvalidActivation    = "AUTH0002"
	CodeUnknownEmail         = "AUTH0003"
	CodeResetTokenNotFound   = "AUTH0004"
	CodeResetTokenExpired    = "AUTH0005"
	CodeResetTokenMismatch   = "AUTH0006"
	CodeTokenInvalid         = "AUTH0007"
	CodeTokenExpired         = "AUTH0008"
	CodeTokenBlacklisted     = "AUTH0009"
	CodeAuthorizationMissing = "AUTH0010"
	CodeAccountBanned        = "AUTH0011"
	CodeUserNotFound         = "USER0001"
	CodeInvalidUserIDs       = "USER0002"
	CodeInvalidRoleIDs       = "USER0003"
	CodeRoleRequired         = "AUTH0012"
)

type apiError struct {
	status  int
	code    string
	message string
}

var errorTable = []struct {
	err error
	apiError
}{
	{service.ErrInvalidCredentials, apiError{http.StatusUnauthorized, CodeInvalidCredentials, "The email or password is incorrect."}},
	{service.ErrInvalidActivationToken, apiError{http.StatusBadRequest, CodeInvalidActivation, "This activation token is invalid."}},
	{service.ErrUnknownEmail, apiError{http.StatusBadRequest, CodeUnknownEmail, "We can't find a user with that e-mail address."}},
	{service.ErrResetTokenNotFound, apiError{http.StatusBadRequest, CodeResetTokenNotFound, "This password reset token is invalid."}},
	{service.ErrResetTokenExpired, apiError{http.StatusBadRequest, CodeResetTokenExpired, "This password reset token has expired."}},
	{service.ErrResetTokenInvalid, apiError{http.StatusBadRequest, CodeResetTokenMismatch, "This password reset token does not match the email."}},
	{service.ErrTokenInvalid, apiError{http.StatusUnauthorized, CodeTokenInvalid, "The bearer token is invalid."}},
	{service.ErrTokenExpired, apiError{http.StatusUnauthorized, CodeTokenExpired, "The bearer token has expired."}},
	{service.ErrTokenBlacklisted, apiError{http.StatusUnauthorized, CodeTokenBlacklisted, "The bearer token has been blacklisted."}},
	{service.ErrAccountBanned, apiError{http.StatusForbidden, CodeAccountBanned, "This account has been banned."}},
	{service.ErrUserNotFound, apiError{http.StatusBadRequest, CodeUserNotFound, "The user does not exist."}},
	{service.ErrInvalidUserIDs, apiError{http.StatusBadRequest, CodeInvalidUserIDs, "The id list is invalid."}},
	{service.ErrInvalidRoleIDs, apiError{http.StatusBadRequest, CodeInvalidRoleIDs, "The role id list is invalid."}},
}

var (
	errInternal             = apiError{http.StatusInternalServerError, CodeInternal, "Internal server error."}
	errAuthorizationMissing = apiError{http.StatusUnauthorized, CodeAuthorizationMissing, "The authorization token is missing or malformed."}
	errRoleRequired         = apiError{http.StatusForbidden, CodeRoleRequired, "You are not allowed to perform this action."}
	validationMessage       = "The given data was invalid."
)

func lookupError(err error) (apiError, bool) {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.apiError, true
		}
	}
	return errInternal, false
}

func respond(c echo.Context, e apiError) error {
	return c.JSON(e.status, util.Error(e.code, e.message))
}

// writeError renders err with the shared envelope. Unmapped errors become a
// 500 and are logged with the request id.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return writeValidation(c, validation.Errors{"email": errors.New("has already been taken")})
	case errors.Is(err, service.ErrPasswordTooWeak):
		return writeValidation(c, validation.Errors{"password": err})
	}

	apiErr, ok := lookupError(err)
	if !ok {
		requestLogger(c).Error("request failed", zap.Error(err))
	}
	return respond(c, apiErr)
}

// writeValidation renders a 422 from ozzo validation errors. Any other error is
// treated as internal.
func writeValidation(c echo.Context, err error) error {
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return writeError(c, err)
	}
	return c.JSON(http.StatusUnprocessableEntity, util.ValidationError(CodeValidation, validationMessage, fields))
}
