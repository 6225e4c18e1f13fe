package shared

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// SetupLogger configures zerolog with pretty console output
func SetupLogger(debug bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level(debug)).
		With().
		Timestamp().
		Logger()
}

// SetupStructuredLogger configures zerolog for structured (JSON) output
func SetupStructuredLogger(debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(os.Stderr).
		Level(level(debug)).
		With().
		Timestamp().
		Logger()
}

// SetupTransportLogger configures the charmbracelet logger used by the
// WebSocket hub
func SetupTransportLogger(debug bool, json bool) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	}
	if debug {
		opts.Level = log.DebugLevel
	}
	if json {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(os.Stderr, opts)
}

// SetupFileLogger opens path for appending and logs to it at the named
// level. Terminal clients use this so log lines don't tear the UI.
func SetupFileLogger(path, level string) (*log.Logger, *os.File, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	}), f, nil
}

func level(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
