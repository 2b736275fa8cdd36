package mylog

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

type standardLogger struct {
	logger zerolog.Logger
}

func newStandardLogger(componentName string) Logger {
	return newConsoleLogger(os.Stderr, componentName)
}

func newConsoleLogger(w io.Writer, componentName string) Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stderr}
	return standardLogger{
		logger: zerolog.New(out).With().Timestamp().Str("component", componentName).Logger(),
	}
}

func (l standardLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	event := l.logger.WithLevel(severity.level())
	if traceLabel != "" {
		event = event.Str("aggregate", traceLabel)
	}
	event.Msgf(format, a...)
}
