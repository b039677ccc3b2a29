// Package logging sets up the process-wide slog logger for the gsearch CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog default with the given level and format.
// If w is nil, os.Stderr is used. Format is "text" (default) or "json".
func Init(level slog.Level, format string, w ...io.Writer) {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// New returns a logger with a "component" attribute.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
