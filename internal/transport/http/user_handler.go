package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/user_admin_backend/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

// RegisterUsers mounts the admin surface. adminRole, when set, is required in
// addition to a valid session.
func RegisterUsers(g *echo.Group, auth Authenticator, users *service.UserService, adminRole string) {
	h := &UserHandler{users: users}

	g.Use(RequireAuth(auth), RequireRole(adminRole))
	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.PATCH("/:id/ban", h.ban)
	g.PATCH("/:id/unban", h.unban)
	g.DELETE("/:id", h.delete)
	g.POST("/collection\\:batchDelete", h.batchDelete)
}

func (h *UserHandler) list(c echo.Context) error {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", service.DefaultPerPage)

	result, err := h.users.List(c.Request().Context(), page, perPage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUsersListResponse(result))
}

func (h *UserHandler) create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return writeValidation(c, err)
	}
	roleIDs, err := parseRoleIDs(req.RoleIDs)
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.users.Create(c.Request().Context(), service.CreateUserInput{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		EmailVerifiedAt: req.EmailVerifiedAt,
		RoleIDs:         roleIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, UserEnvelope{User: toUserResponse(user)})
}

func (h *UserHandler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, service.ErrUserNotFound)
	}
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	if err := req.Validate(); err != nil {
		return writeValidation(c, err)
	}
	roleIDs, err := parseRoleIDs(req.RoleIDs)
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.users.Update(c.Request().Context(), id, service.UpdateUserInput{
		Name:            req.Name,
		Email:           req.Email,
		EmailVerifiedAt: req.EmailVerifiedAt,
		RoleIDs:         roleIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

func (h *UserHandler) ban(c echo.Context) error {
	return h.byID(c, h.users.Ban)
}

func (h *UserHandler) unban(c echo.Context) error {
	return h.byID(c, h.users.Unban)
}

func (h *UserHandler) delete(c echo.Context) error {
	return h.byID(c, h.users.Delete)
}

func (h *UserHandler) batchDelete(c echo.Context) error {
	var req BatchDeleteRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, errMalformedBody)
	}
	ids, err := service.ParseIDList(req.IDs)
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.users.BatchDelete(c.Request().Context(), ids); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) byID(c echo.Context, op func(ctx context.Context, id uuid.UUID) error) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, service.ErrUserNotFound)
	}
	if err := op(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseRoleIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, service.ErrInvalidRoleIDs
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, service.ErrInvalidRoleIDs
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func queryInt(c echo.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.QueryParam(key)); err == nil {
		return v
	}
	return fallback
}
