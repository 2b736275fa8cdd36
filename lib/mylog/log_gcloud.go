package mylog

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Haazy99/AgencyTest2/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		// Cloud Logging parses these field names from stdout JSON.
		zerolog.LevelFieldName = "severity"
		zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
			return strings.ToUpper(l.String())
		}
		New = newGcloudLogger
	}
}

type structuredLogger struct {
	componentName string
	logger        zerolog.Logger
}

func newGcloudLogger(componentName string) Logger {
	return newStructuredLogger(os.Stdout, componentName)
}

func newStructuredLogger(w io.Writer, componentName string) Logger {
	return structuredLogger{
		componentName: componentName,
		logger:        zerolog.New(w).With().Str("component", componentName).Logger(),
	}
}

func (l structuredLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	event := l.logger.WithLevel(severity.level())
	if traceLabel != "" {
		event = event.Dict("logging.googleapis.com/labels", zerolog.Dict().Str("aggregate", traceLabel))
	}
	if trace := mycontext.TraceFromContext(ctx); trace != "" {
		event = event.Str("logging.googleapis.com/trace", trace)
	}
	event.Msgf(l.componentName+": "+format, a...)
}
