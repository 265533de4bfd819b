package logging

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/labstack/echo/v5"

	appmiddleware "github.com/janisto/echo-greeting/internal/platform/middleware"
)

// RequestLoggerConfig configures RequestLoggerWithConfig.
type RequestLoggerConfig struct {
	// Logger is the base for request loggers. Nil means Logger().
	Logger *slog.Logger
	// ProjectID qualifies trace ids for Cloud Trace. Empty falls back to
	// GOOGLE_CLOUD_PROJECT and friends; with no project, trace attributes are omitted.
	ProjectID string
}

// RequestLogger stores a request-scoped logger in the request context.
// Entries written through it carry the request id and Cloud Trace attributes.
func RequestLogger() echo.MiddlewareFunc {
	return RequestLoggerWithConfig(RequestLoggerConfig{})
}

// RequestLoggerWithConfig is RequestLogger with an explicit base logger and project.
// RequestID must run earlier in the chain for the requestId attribute to appear.
func RequestLoggerWithConfig(cfg RequestLoggerConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			l := cfg.Logger
			if l == nil {
				l = Logger()
			}
			if attrs := requestAttrs(c, cmp.Or(cfg.ProjectID, projectIDFromEnv())); len(attrs) > 0 {
				l = l.With(attrs...)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithLogger(req.Context(), l)))
			return next(c)
		}
	}
}

func requestAttrs(c *echo.Context, projectID string) []any {
	var attrs []any
	if id := appmiddleware.RequestIDFrom(c); id != "" {
		attrs = append(attrs, slog.String("requestId", id))
	}
	if projectID == "" {
		return attrs
	}
	if tp, ok := parseTraceparent(c.Request().Header.Get(traceparentHeader)); ok {
		attrs = append(attrs, tp.attrs(projectID)...)
	}
	return attrs
}

// AccessLogger logs one "request completed" entry per request after the
// handler returns. Paths in skipPaths (health checks) are not logged.
func AccessLogger(skipPaths ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			req := c.Request()
			if slices.Contains(skipPaths, req.URL.Path) {
				return next(c)
			}
			start := time.Now()

			err := next(c)

			var status, size int
			if resp, uerr := echo.UnwrapResponse(c.Response()); uerr == nil {
				status = resp.Status
				size = int(resp.Size)
			}

			ctx := c.Request().Context()
			FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, "request completed",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", size),
				slog.Duration("duration", time.Since(start)),
				slog.String("userAgent", req.UserAgent()),
			)
			return err
		}
	}
}
