// Package config resolves server settings from flags and environment variables.
package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/janisto/echo-greeting/internal/platform/logging"
	"github.com/janisto/echo-greeting/internal/platform/validate"
)

const (
	flagPort            = "port"
	flagEnvironment     = "environment"
	flagGracefulTimeout = "graceful-timeout"
	flagDocsSpecPath    = "docs-spec-path"
	flagLogLevel        = "log-level"
	flagLogFile         = "log-file"
	flagLogMaxSize      = "log-max-size-mb"
	flagLogMaxBackups   = "log-max-backups"
	flagLogMaxAge       = "log-max-age-days"
)

// Config holds all server settings.
type Config struct {
	Port            string        `env:"PORT"             validate:"required,numeric"`
	Environment     string        `env:"APP_ENVIRONMENT"  validate:"oneof=development production test"`
	GracefulTimeout time.Duration `env:"GRACEFUL_TIMEOUT" validate:"gt=0"`
	DocsSpecPath    string        `env:"DOCS_SPEC_PATH"   validate:"required"`
	Log             LogConfig
}

// LogConfig holds logger settings. File is optional; when set, output is also
// written to a size-rotated file.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL"        validate:"oneof=debug info warn error"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB"  validate:"gte=1"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS"  validate:"gte=0"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" validate:"gte=0"`
}

// Flags returns the CLI flags, each backed by its environment variable.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagPort,
			Usage:   "HTTP listen port",
			Sources: cli.EnvVars("PORT"),
			Value:   "8080",
		},
		&cli.StringFlag{
			Name:    flagEnvironment,
			Usage:   "deployment environment (development, production, test)",
			Sources: cli.EnvVars("APP_ENVIRONMENT"),
			Value:   "production",
		},
		&cli.DurationFlag{
			Name:    flagGracefulTimeout,
			Usage:   "time allowed for in-flight requests on shutdown",
			Sources: cli.EnvVars("GRACEFUL_TIMEOUT"),
			Value:   10 * time.Second,
		},
		&cli.StringFlag{
			Name:    flagDocsSpecPath,
			Usage:   "path of the generated OpenAPI document",
			Sources: cli.EnvVars("DOCS_SPEC_PATH"),
			Value:   "api-docs/openapi.json",
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "log level (debug, info, warn, error)",
			Sources: cli.EnvVars("LOG_LEVEL"),
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    flagLogFile,
			Usage:   "optional log file, rotated by size",
			Sources: cli.EnvVars("LOG_FILE"),
		},
		&cli.IntFlag{
			Name:    flagLogMaxSize,
			Usage:   "log file size in megabytes before rotation",
			Sources: cli.EnvVars("LOG_MAX_SIZE_MB"),
			Value:   100,
		},
		&cli.IntFlag{
			Name:    flagLogMaxBackups,
			Usage:   "rotated log files to keep (0 keeps all)",
			Sources: cli.EnvVars("LOG_MAX_BACKUPS"),
			Value:   3,
		},
		&cli.IntFlag{
			Name:    flagLogMaxAge,
			Usage:   "days to keep rotated log files (0 disables age pruning)",
			Sources: cli.EnvVars("LOG_MAX_AGE_DAYS"),
			Value:   28,
		},
	}
}

// FromCommand reads the resolved flag values and validates them.
func FromCommand(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		Port:            cmd.String(flagPort),
		Environment:     cmd.String(flagEnvironment),
		GracefulTimeout: cmd.Duration(flagGracefulTimeout),
		DocsSpecPath:    cmd.String(flagDocsSpecPath),
		Log: LogConfig{
			Level:      cmd.String(flagLogLevel),
			File:       cmd.String(flagLogFile),
			MaxSizeMB:  int(cmd.Int(flagLogMaxSize)),
			MaxBackups: int(cmd.Int(flagLogMaxBackups)),
			MaxAgeDays: int(cmd.Int(flagLogMaxAge)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns a *validate.ValidationError listing every invalid field.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoggingOptions converts the log settings for logging.Setup.
func (c *Config) LoggingOptions() logging.Options {
	// Level was validated against the names ParseLevel accepts.
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Options{
		Level:      level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
