package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerKey struct{}

// WithLogger returns a copy of ctx that carries l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored by WithLogger, or Logger() when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Logger()
}

func LogInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, nil, attrs)
}

func LogWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, nil, attrs)
}

// LogError adds err as the "error" attribute when it is non-nil.
func LogError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, err, attrs)
}

// LogFatal logs at EMERGENCY severity and exits with status 1.
func LogFatal(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	emit(ctx, levelEmergency, msg, err, attrs)
	os.Exit(1)
}

func emit(ctx context.Context, level slog.Level, msg string, err error, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	FromContext(ctx).LogAttrs(ctx, level, msg, attrs...)
}
