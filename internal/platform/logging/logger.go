package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// rfc3339Micros is the timestamp layout Cloud Logging parses at full precision.
const rfc3339Micros = "2006-01-02T15:04:05.000000Z07:00"

var (
	loggerOnce sync.Once
	baseLogger *slog.Logger
)

// Options configures the process-wide logger.
type Options struct {
	Level      slog.Level
	File       string // optional; rotated by lumberjack and tee'd with stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// gcpHandler wraps slog.JSONHandler to remap level names to GCP Cloud Logging
// severity strings and format timestamps with microsecond precision.
type gcpHandler struct {
	slog.Handler
}

func (h *gcpHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Time = r.Time.UTC()
	return h.Handler.Handle(ctx, r)
}

func (h *gcpHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &gcpHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *gcpHandler) WithGroup(name string) slog.Handler {
	return &gcpHandler{Handler: h.Handler.WithGroup(name)}
}

// gcpLevelNames maps slog levels to GCP Cloud Logging severity strings.
var gcpLevelNames = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	slog.LevelWarn:  "WARNING",
	slog.LevelError: "ERROR",
	levelCritical:   "CRITICAL",
	levelAlert:      "ALERT",
	levelEmergency:  "EMERGENCY",
}

const (
	levelCritical  = slog.LevelError + 4
	levelAlert     = slog.LevelError + 8
	levelEmergency = slog.LevelError + 12
)

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(rfc3339Micros))
		a.Key = "timestamp"
	}
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			if name, found := gcpLevelNames[level]; found {
				a.Value = slog.StringValue(name)
			}
		}
		a.Key = "severity"
	}
	if a.Key == slog.MessageKey {
		a.Key = "message"
	}
	return a
}

func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	})
	return slog.New(&gcpHandler{Handler: h})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openOutput returns stdout, or stdout tee'd with a rotating file when opts.File is set.
func openOutput(stdout io.Writer, opts Options) (io.Writer, io.Closer) {
	if opts.File == "" {
		return stdout, nopCloser{}
	}
	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	return io.MultiWriter(stdout, lj), lj
}

// Setup configures the process-wide logger. It must run before the first call
// to Logger; once the logger exists, Setup is a no-op.
// The returned Closer releases the log file, if any.
func Setup(opts Options) io.Closer {
	w, closer := openOutput(os.Stdout, opts)
	applied := false
	loggerOnce.Do(func() {
		baseLogger = newLogger(w, opts.Level)
		applied = true
	})
	if !applied {
		_ = closer.Close()
		return nopCloser{}
	}
	return closer
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return level, nil
}

// Logger returns the process-wide slog.Logger instance.
func Logger() *slog.Logger {
	loggerOnce.Do(func() {
		baseLogger = newLogger(os.Stdout, slog.LevelInfo)
	})
	return baseLogger
}
