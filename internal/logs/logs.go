// Package logs configures the process-wide slog logger, grounded on
// nebula's internal/logs tint+isatty setup and generalized from per-module
// loggers to per-discovery-session loggers.
package logs

import (
	"log/slog"
	"os"
	"strings"

	"github.com/aws/smithy-go/logging"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var logLevel string

// LevelNone silences logging entirely; slog has no built-in "off" level, so
// this picks a level above Error that nothing is ever logged at.
const LevelNone = slog.Level(12)

func getLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return LevelNone
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the default tint-colorized stderr logger, disabling
// color when stderr is not a terminal.
func NewLogger() *slog.Logger {
	w := os.Stderr
	handler := tint.NewHandler(w, &tint.Options{
		Level:   getLevelFromString(logLevel),
		NoColor: !isatty.IsTerminal(w.Fd()),
	})
	return slog.New(handler)
}

// NewSessionLogger returns a logger scoped to one discovery session, the
// session-oriented equivalent of nebula's NewModuleLogger.
func NewSessionLogger(sessionID, provider string) *slog.Logger {
	return NewLogger().WithGroup("session").With("sessionId", sessionID, "provider", provider)
}

// SetLogLevel sets the level subsequent NewLogger/ConfigureDefaults calls
// use.
func SetLogLevel(level string) {
	logLevel = level
}

// ConfigureDefaults sets the log level and installs the resulting logger as
// slog's process-wide default.
func ConfigureDefaults(level string) {
	SetLogLevel(level)
	slog.SetDefault(NewLogger())
}

// SDKLogger adapts smithy-go's logging.Logger interface onto slog, so the
// AWS SDK's internal request/response tracing flows through the same
// handler as the rest of the program instead of its own ad hoc writer.
func SDKLogger() logging.Logger {
	return logging.LoggerFunc(func(classification logging.Classification, format string, v ...interface{}) {
		logger := NewLogger().WithGroup("aws-sdk")
		switch classification {
		case logging.Debug:
			logger.Debug(format, v...)
		case logging.Warn:
			logger.Warn(format, v...)
		default:
			logger.Debug(format, v...)
		}
	})
}
