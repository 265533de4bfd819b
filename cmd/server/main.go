package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/janisto/echo-greeting/internal/config"
	"github.com/janisto/echo-greeting/internal/http/docs"
	"github.com/janisto/echo-greeting/internal/http/routes"
	applog "github.com/janisto/echo-greeting/internal/platform/logging"
	appmiddleware "github.com/janisto/echo-greeting/internal/platform/middleware"
	"github.com/janisto/echo-greeting/internal/platform/respond"
	greetingsvc "github.com/janisto/echo-greeting/internal/service/greeting"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

//	@title			Greeting API
//	@version		1.0
//	@description	Returns greetings with process-unique, increasing ids.
//	@BasePath		/

func main() {
	cmd := &cli.Command{
		Name:    "greeting-server",
		Usage:   "Serve JSON greetings over HTTP",
		Version: Version,
		Flags:   config.Flags(),
		Action:  serve,
	}

	ctx := context.Background()
	if err := cmd.Run(ctx, os.Args); err != nil {
		applog.LogFatal(ctx, "server failed", err)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return err
	}

	logCloser := applog.Setup(cfg.LoggingOptions())
	defer func() {
		if closeErr := logCloser.Close(); closeErr != nil {
			applog.LogError(ctx, "log file close error", closeErr)
		}
	}()

	if cfg.IsDevelopment() {
		applog.LogWarn(ctx, "running in development mode")
	}

	e := newServer(cfg, greetingsvc.NewCounter())

	applog.LogInfo(ctx, "server starting",
		slog.String("addr", cfg.Addr()),
		slog.String("environment", cfg.Environment),
		slog.String("version", Version))

	sc := echo.StartConfig{
		Address:         cfg.Addr(),
		GracefulTimeout: cfg.GracefulTimeout,
		BeforeServeFunc: func(s *http.Server) error {
			s.ReadTimeout = 5 * time.Second
			s.ReadHeaderTimeout = 2 * time.Second
			s.WriteTimeout = 10 * time.Second
			s.IdleTimeout = 60 * time.Second
			s.MaxHeaderBytes = 64 << 10
			return nil
		},
	}

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := sc.Start(sigCtx, e); err != nil {
		return err
	}

	applog.LogInfo(ctx, "server exited")
	return nil
}

func newServer(cfg *config.Config, svc greetingsvc.Service) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = respond.NewHTTPErrorHandler()
	e.IPExtractor = echo.ExtractIPFromRealIPHeader()
	e.Logger = applog.Logger()

	e.Use(
		appmiddleware.Security("/api-docs"),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		middleware.BodyLimit(1<<20),
		applog.RequestLogger(),
		applog.AccessLogger("/health"),
		respond.Recoverer(),
	)

	routes.Register(e, svc)
	docs.Register(e, cfg.DocsSpecPath)

	return e
}
