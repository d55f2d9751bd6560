package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Origins())
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOARD_ID=lesson-7\nHISTORY_LIMIT=12\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("HISTORY_LIMIT", "40")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Cleanup(func() { os.Unsetenv("BOARD_ID"); os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lesson-7", cfg.BoardID)
	assert.Equal(t, 40, cfg.HistoryLimit)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("AUTOSAVE_INTERVAL", "0s")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AUTOSAVE_INTERVAL", "10s")
	t.Setenv("PORT", "eighty")
	_, err = Load()
	assert.Error(t, err)
}
