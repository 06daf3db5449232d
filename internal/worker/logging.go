package worker

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName is attached to every log line as the "service" attribute
const ServiceName = "opportunity-finder"

// NewLogger builds the process logger writing to stdout.
// level accepts slog level names (debug, info, warn, error); anything else means info.
// format "json" selects the JSON handler, anything else the text handler.
func NewLogger(level, format string) *slog.Logger {
	return newLogger(os.Stdout, level, format)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", ServiceName)
}
