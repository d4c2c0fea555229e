// Package logger configures the process-wide structured logger.
package logger

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Config controls log output for the whole process.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Unknown values
	// fall back to "info".
	Level string
	// JSON switches from the human-readable console format to JSON lines.
	JSON bool
}

var std = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
})

// Init applies cfg to the shared logger. Safe to call more than once; the
// last call wins.
func Init(cfg Config) {
	std.SetLevel(parseLevel(cfg.Level))
	if cfg.JSON {
		std.SetFormatter(log.JSONFormatter)
		std.SetTimeFormat(time.RFC3339)
	}
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// With returns a sub-logger carrying the given key/value pairs.
func With(keyvals ...any) *log.Logger {
	return std.With(keyvals...)
}

func Debug(msg string, keyvals ...any) { std.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { std.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { std.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { std.Error(msg, keyvals...) }
