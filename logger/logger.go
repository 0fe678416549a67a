package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
)

type Config struct {
	DataDir string
	DevMode bool
	// Stderr sends logs to stderr instead of stdout. The MCP server needs
	// stdout for protocol frames.
	Stderr bool
}

// Init initializes the global slog logger.
// In production (DevMode=false), logs are written to dataDir/scanrelay.log.
// In development (DevMode=true), logs are written to stdout.
// LOG_FILE env overrides the default file path.
func Init(cfg Config) {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stdout
	if cfg.Stderr {
		w = os.Stderr
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" && !cfg.DevMode && cfg.DataDir != "" {
		logFile = filepath.Join(cfg.DataDir, "scanrelay.log")
	}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			slog.Error("failed to create log directory, using stdout only", "file", logFile, "error", err)
		} else {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				slog.Error("failed to open log file, using stdout only", "file", logFile, "error", err)
			} else {
				w = f
			}
		}
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRequestLogger creates a logger with a unique requestId for one invocation.
// The id is returned so callers can stamp it on whatever they emit.
func NewRequestLogger() (*slog.Logger, string) {
	id := uuid.Must(uuid.NewV7()).String()
	return slog.With("requestId", id), id
}

// LogPanic logs a recovered panic value together with the goroutine stack.
func LogPanic(r any, msg string, args ...any) {
	args = append(args, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
	slog.Error(msg, args...)
}

// Truncate shortens s to at most maxLen runes for log output.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
