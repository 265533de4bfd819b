// Package routes assembles the HTTP surface of the greeting service.
package routes

import (
	"github.com/labstack/echo/v5"

	"github.com/janisto/echo-greeting/internal/http/greeting"
	"github.com/janisto/echo-greeting/internal/http/health"
	greetingsvc "github.com/janisto/echo-greeting/internal/service/greeting"
)

// Register wires all API routes onto e.
func Register(e *echo.Echo, svc greetingsvc.Service) {
	e.GET("/health", health.Handler(svc))
	greeting.Register(e.Group(""), svc)
}
