package rest

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// MIMEYAML OpenAPI定義のContent-Type
const MIMEYAML = "application/x-yaml"

//go:embed openapi.yaml
var openapiSpec []byte

// SetupSwagger OpenAPI定義とSwagger UIを公開する
func SetupSwagger(e *echo.Echo) {
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, MIMEYAML, openapiSpec)
	})

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(
		echoSwagger.URL("/openapi.yaml"),
	))
}
