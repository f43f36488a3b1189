package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "DB_PATH", "LOG_LEVEL", "EXPORT_SCALE", "EXPORT_JPEG_QUALITY",
	"EXPORT_FONT_WAIT", "EXPORT_BLANK_THRESHOLD", "EXPORT_DIR",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	got := Load(filepath.Join(t.TempDir(), "missing.env"))
	want := Config{
		Port:     8080,
		DBPath:   "./data/quotation.db",
		LogLevel: "info",
		Export: Export{
			Scale:          2,
			JPEGQuality:    95,
			FontWait:       2 * time.Second,
			BlankThreshold: 8,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("EXPORT_SCALE", "1.5")
	t.Setenv("EXPORT_FONT_WAIT", "500ms")
	t.Setenv("EXPORT_DIR", "/tmp/exports")

	got := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, 9090, got.Port)
	assert.Equal(t, 1.5, got.Export.Scale)
	assert.Equal(t, 500*time.Millisecond, got.Export.FontWait)
	assert.Equal(t, "/tmp/exports", got.Export.Dir)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=6000\nEXPORT_JPEG_QUALITY=80\nDB_PATH=/var/lib/q.db\n"), 0o600))

	got := Load(path)
	assert.Equal(t, 7000, got.Port, "environment wins over the file")
	assert.Equal(t, 80, got.Export.JPEGQuality)
	assert.Equal(t, "/var/lib/q.db", got.DBPath)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")
	t.Setenv("EXPORT_SCALE", "-1")
	t.Setenv("EXPORT_FONT_WAIT", "soon")
	t.Setenv("EXPORT_BLANK_THRESHOLD", "0")

	got := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, 8080, got.Port)
	assert.Equal(t, 2.0, got.Export.Scale)
	assert.Equal(t, 2*time.Second, got.Export.FontWait)
	assert.Equal(t, 8, got.Export.BlankThreshold)
}
