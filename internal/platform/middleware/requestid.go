package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

// HeaderXRequestID carries the request id in both directions.
const HeaderXRequestID = "X-Request-ID"

const (
	requestIDKey       = "request_id"
	maxRequestIDLength = 128
)

// RequestID assigns every request an id, echoes it in the X-Request-ID
// response header and stores it for RequestIDFrom. A client-supplied id is
// kept when it is 1-128 printable ASCII characters; anything else is replaced
// with a random UUID so it can be logged verbatim.
func RequestID() echo.MiddlewareFunc {
	return requestID(uuid.NewString)
}

func requestID(generate func() string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := c.Request().Header.Get(HeaderXRequestID)
			if !loggable(id) {
				id = generate()
			}
			c.Set(requestIDKey, id)
			c.Response().Header().Set(HeaderXRequestID, id)
			return next(c)
		}
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "" if it did not run.
func RequestIDFrom(c *echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

func loggable(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	return !strings.ContainsFunc(id, func(r rune) bool {
		return r < ' ' || r > '~'
	})
}
