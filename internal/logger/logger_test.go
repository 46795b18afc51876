package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/kryptohire/internal/config"
)

func TestNew_FileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	log, err := New(config.LoggerConfig{
		Level:      "info",
		Type:       TypeFile,
		FilePath:   logPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
	require.NoError(t, err)

	log.Debug("debug message")
	log.Info("info message", "resume_id", "abc")
	log.Error("error message")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	out := string(content)
	assert.Contains(t, out, "info message")
	assert.Contains(t, out, `"resume_id":"abc"`)
	assert.Contains(t, out, "ERROR")
	assert.NotContains(t, out, "debug message")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(config.LoggerConfig{Type: TypeFile})
	assert.Error(t, err)

	_, err = New(config.LoggerConfig{Type: "syslog"})
	assert.Error(t, err)
}

func TestNew_Console(t *testing.T) {
	log, err := New(config.LoggerConfig{Type: TypeConsole, Level: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
