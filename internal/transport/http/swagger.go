package http

import (
	"net/http"
	"os"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// RegisterSwagger serves the OpenAPI document at specPath as JSON and the
// Swagger UI under /swagger.
func RegisterSwagger(e *echo.Echo, specPath string) {
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		data, err := os.ReadFile(specPath)
		if err != nil {
			requestLogger(c).Error("load swagger spec", zap.String("path", specPath), zap.Error(err))
			return respond(c, errInternal)
		}
		jsonSpec, err := yaml.YAMLToJSON(data)
		if err != nil {
			requestLogger(c).Error("convert swagger spec", zap.Error(err))
			return respond(c, errInternal)
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
