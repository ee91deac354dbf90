// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a [slog.Logger] backed by a [log.Logger] handler writing to w.
//
// The writer defaults to [os.Stderr]. Format is one of text, json or logfmt; anything
// else falls back to text.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           log.Level(level),
		Formatter:       parseFormatter(format),
	})

	return slog.New(handler)
}

// Setup installs a logger built by [New] as the slog default.
func Setup(w io.Writer, level slog.Level, format string) *slog.Logger {
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger
}

func parseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
