package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/service"
)

type RouterConfig struct {
	AllowOrigins   []string
	UsersAdminRole string
	SecureCookie   bool
	SwaggerSpec    string
}

func NewRouter(cfg RouterConfig, logger *zap.Logger) *echo.Echo {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	allowCredentials := true
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ksuid.New().String() },
	}))
	registerLogging(e, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
		},
		AllowCredentials: allowCredentials,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	if cfg.SwaggerSpec != "" {
		RegisterSwagger(e, cfg.SwaggerSpec)
	}
	return e
}

// RegisterRoutes mounts the auth and users surfaces under /api.
func RegisterRoutes(e *echo.Echo, cfg RouterConfig, auth *service.AuthService, users *service.UserService) {
	api := e.Group("/api")
	RegisterAuth(api.Group("/auth"), auth, cfg.SecureCookie)
	RegisterUsers(api.Group("/users"), auth, users, cfg.UsersAdminRole)
}
