// Package logging configures logrus for the simulator and carries a logger
// through contexts.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type loggerContextKey string

const loggerContextKeyVal = loggerContextKey("logrus.FieldLogger")

// Configure returns a logger writing to out at level. JSON selects the JSON
// formatter; otherwise text is colored when out is a terminal.
func Configure(level string, out io.Writer, json bool) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return logger, nil
	}
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   IsColorable(out),
		DisableColors: !IsColorable(out),
		FullTimestamp: true,
	})
	return logger, nil
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsColorable reports whether colored output should go to w.
func IsColorable(w io.Writer) bool {
	if !IsTerminal(w) {
		return false
	}
	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if t, ok := os.LookupEnv("TERM"); ok && (t == "dumb" || t == "unknown") {
		return false
	}
	return true
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Logger returns the logger stored in ctx, or the standard logger.
func Logger(ctx context.Context) logrus.FieldLogger {
	val := ctx.Value(loggerContextKeyVal)
	if val != nil {
		if logger, ok := val.(logrus.FieldLogger); ok {
			return logger
		}
	}
	return logrus.StandardLogger()
}

// WithLogger adds a value to the context for the logger
func WithLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerContextKeyVal, logger)
}
