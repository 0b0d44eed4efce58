package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/atelier-bot/internal/config"
)

// NewLogger builds the process logger from cfg, writes to stderr and installs
// it as the slog default.
//
// Format "json" is for production; anything else gives text output with
// source locations. Level is debug, info, warn(ing) or error, case-insensitive,
// defaulting to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, cfg)).With(slog.String("app", "atelier-bot"))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	json := strings.EqualFold(cfg.Format, "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !json,
	}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
