package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"

	"alfredoptarigan/kryptohire/internal/config"
)

const (
	TypeConsole = "console"
	TypeFile    = "file"
)

// New builds a slog logger writing text to stdout or JSON to a rotated file.
func New(cfg config.LoggerConfig) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	switch cfg.Type {
	case TypeConsole, "":
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
	case TypeFile:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file path required for file logger")
		}
		return slog.New(slog.NewJSONHandler(newRotatingWriter(cfg), opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log type: %s", cfg.Type)
	}
}

// Discard is used by tests and by components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newRotatingWriter(cfg config.LoggerConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   true,
	}
}
