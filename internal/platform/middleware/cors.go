package middleware

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// CORS returns Echo middleware that lets any origin read the API.
// Only safe methods are allowed; the service has no write endpoints.
func CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Accept",
			"Content-Type",
			HeaderXRequestID,
			"traceparent",
		},
		ExposeHeaders: []string{
			HeaderXRequestID,
		},
		MaxAge: 300,
	})
}
