package http

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/njprem/user_admin_backend/internal/service"
)

var errMalformedBody = apiError{http.StatusBadRequest, CodeValidation, "The request body is malformed."}

type AuthHandler struct {
	auth         *service.AuthService
	secureCookie bool
}

func RegisterAuth(g *echo.Group, auth *service.AuthService, secureCookie bool) {
	h := &AuthHandler{auth: auth, secureCookie: secureCookie}

	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.GET("/register/activate/:token", h.activate)

	requireAuth := RequireAuth(auth)
	g.GET("/logout", h.logout, requireAuth)
	g.GET("/getUser", h.getUser, requireAuth)
	g.PATCH("/password/change", h.changePassword, requireAuth)

	g.POST("/password/token/create", h.createPasswordResetToken)
	g.GET("/password/token/find/:token", h.findPasswordResetToken)
	g.PATCH("/password/reset", h.resetPassword)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return writeValidation(c, err)
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return writeValidation(c, err)
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    result.Token.Token,
		Path:     "/",
		MaxAge:   int(result.Token.ExpiresIn),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, toLoginResponse(result))
}

func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), currentToken(c)); err != nil {
		return writeError(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) getUser(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return respond(c, errAuthorizationMissing)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

func (h *AuthHandler) activate(c echo.Context) error {
	user, err := h.auth.Activate(c.Request().Context(), c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

func (h *AuthHandler) createPasswordResetToken(c echo.Context) error {
	var req PasswordResetTokenRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return writeValidation(c, err)
	}

	if _, err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) findPasswordResetToken(c echo.Context) error {
	reset, err := h.auth.FindPasswordResetToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, PasswordResetEnvelope{PasswordReset: reset})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return writeValidation(c, err)
	}

	user, err := h.auth.ResetPassword(c.Request().Context(), req.Email, req.Token, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	account, ok := CurrentUser(c)
	if !ok {
		return respond(c, errAuthorizationMissing)
	}
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	if err := req.Validate(); err != nil {
		return writeValidation(c, err)
	}

	user, err := h.auth.ChangePassword(c.Request().Context(), account, req.Password, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return respond(c, apiError{http.StatusBadRequest, CodeInvalidCredentials, "The current password is incorrect."})
	case errors.Is(err, service.ErrPasswordTooWeak):
		return writeValidation(c, validation.Errors{"new_password": err})
	case err != nil:
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}
