package http

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/user_admin_backend/internal/domain"
)

const (
	contextUserKey  = "auth.user"
	contextTokenKey = "auth.token"
	tokenCookieName = "token"
)

// Authenticator resolves a bearer token into an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// RequireAuth accepts the token from the Authorization header first and falls
// back to the token cookie set at login.
func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := requestToken(c)
			if !ok {
				return respond(c, errAuthorizationMissing)
			}
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return writeError(c, err)
			}
			c.Set(contextUserKey, user)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// RequireRole rejects authenticated accounts lacking role. An empty role lets
// every authenticated account through.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role == "" {
				return next(c)
			}
			user, ok := CurrentUser(c)
			if !ok {
				return respond(c, errAuthorizationMissing)
			}
			if !user.HasRoleName(role) {
				return respond(c, errRoleRequired)
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(contextTokenKey).(string)
	return token
}

func requestToken(c echo.Context) (string, bool) {
	if header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	if cookie, err := c.Cookie(tokenCookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value), true
	}
	return "", false
}
