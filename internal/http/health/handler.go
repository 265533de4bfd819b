// Package health reports liveness together with the greeting counter.
package health

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

// Counter reports how many greetings have been issued.
type Counter interface {
	Count() int64
}

// Response is the payload for the health endpoint.
type Response struct {
	Status          string `json:"status"          example:"healthy"`
	GreetingsIssued int64  `json:"greetingsIssued" example:"42"`
}

// Handler returns the GET /health handler. Reading the counter never advances it.
//
//	@Summary		Health check
//	@Description	Reports that the process is serving requests and how many greetings it has issued
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	Response
//	@Router			/health [get]
func Handler(counter Counter) echo.HandlerFunc {
	return func(c *echo.Context) error {
		return c.JSON(http.StatusOK, Response{
			Status:          "healthy",
			GreetingsIssued: counter.Count(),
		})
	}
}
