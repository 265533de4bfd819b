package greeting

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"

	applog "github.com/janisto/echo-greeting/internal/platform/logging"
	"github.com/janisto/echo-greeting/internal/platform/respond"
	greetingsvc "github.com/janisto/echo-greeting/internal/service/greeting"
)

const nameParam = "name"

type handler struct {
	svc greetingsvc.Service
}

// Register wires greeting routes into the provided group.
func Register(g *echo.Group, svc greetingsvc.Service) {
	h := &handler{svc: svc}
	g.GET("/greeting", h.get)
}

// get godoc
//
//	@Summary		Greeting endpoint
//	@Description	Returns a greeting with a process-unique, increasing id
//	@Tags			greeting
//	@Accept			json
//	@Produce		json,application/cbor
//	@Param			name	query		string	false	"Name to greet"	default(World)
//	@Success		200		{object}	greetingsvc.Greeting
//	@Failure		405		{object}	respond.ProblemDetails
//	@Router			/greeting [get]
func (h *handler) get(c *echo.Context) error {
	ctx := c.Request().Context()
	name := queryName(c)

	g := h.svc.Greet(ctx, name)

	applog.LogInfo(ctx, "greeting issued",
		slog.String("path", "/greeting"),
		slog.Int64("id", g.ID),
		slog.Bool("named", name != nil))

	return respond.Negotiate(c, http.StatusOK, g)
}

// queryName returns the first name query value, or nil when the parameter is absent.
// A present but empty parameter yields a pointer to "". Pairs that fail to
// percent-decode are dropped by Echo's query parser, so "name=%zz" reads as absent.
func queryName(c *echo.Context) *string {
	values := c.QueryParams()[nameParam]
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
