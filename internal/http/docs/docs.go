// Package docs serves the OpenAPI document for the greeting API and a Swagger UI page.
package docs

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v5"
)

//go:embed swagger-ui.html
var swaggerUI []byte

type handler struct {
	specPath string
}

// Register wires GET /api-docs/openapi.json, which serves the file at specPath,
// and GET /api-docs, which serves the embedded Swagger UI.
// specPath may be absolute or relative to the working directory; it is read
// on every request so a regenerated document is picked up without a restart.
func Register(e *echo.Echo, specPath string) {
	h := &handler{specPath: specPath}
	e.GET("/api-docs/openapi.json", h.openAPI)
	e.GET("/api-docs", h.ui)
}

func (h *handler) openAPI(c *echo.Context) error {
	b, err := os.ReadFile(h.specPath)
	if errors.Is(err, fs.ErrNotExist) {
		return echo.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read openapi document: %w", err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, b)
}

func (h *handler) ui(c *echo.Context) error {
	return c.HTMLBlob(http.StatusOK, swaggerUI)
}
