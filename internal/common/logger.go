package common

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide structured logger. LOG_LEVEL selects the
// minimum level (debug, info, warn, error); anything else means info.
func NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
