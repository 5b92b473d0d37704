// Package logger provides context-aware structured logging on top of logrus.
// Converters and the reload coordinator pull their logger from the context so
// per-reload fields (asset kind, trigger path) travel with the call chain.
package logger

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// G is shorthand for GetLogger.
	G = GetLogger
	// L is the fallback entry used when the context carries no logger.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// WithLogger returns a context carrying the given entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// GetLogger returns the entry stored in ctx, or the global fallback with the
// context attached.
func GetLogger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L.WithContext(ctx)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	applyFormat(l, "text")
	return l
}

func applyFormat(l *logrus.Logger, format string) {
	switch format {
	case "json":
		l.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	default:
		l.Formatter = &logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		}
	}
}

// SetLevel sets the global log level from a logrus level name.
func SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	L.Logger.SetLevel(parsed)
	return nil
}

// SetFormat switches the global logger between "text" and "json" output.
func SetFormat(format string) {
	applyFormat(L.Logger, format)
}

// SetOutput redirects the global logger.
func SetOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
