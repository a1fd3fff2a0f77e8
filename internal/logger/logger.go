package logger

import (
	"log/slog"
	"os"
	"strings"
)

var Logger = slog.Default()

// Init configures the default logger from the LOG_LEVEL environment
// variable (debug, info, warn, error).
func Init() {
	InitLevel(os.Getenv("LOG_LEVEL"))
}

// InitLevel configures the default logger with an explicit level name,
// falling back to info when the name is empty or unknown.
func InitLevel(name string) {
	level := slog.LevelInfo
	switch strings.ToLower(name) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(Logger)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
