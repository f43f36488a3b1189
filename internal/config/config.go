// Package config reads server settings from the environment. A .env file
// in the working directory is loaded first when present; variables already
// set in the environment win.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every server setting.
type Config struct {
	Port     int
	DBPath   string
	LogLevel string
	Export   Export
}

// Export configures the export pipeline.
type Export struct {
	// Scale is the device pixel ratio of raster captures.
	Scale float64
	// JPEGQuality applies to image and PDF exports (1-100).
	JPEGQuality int
	// FontWait bounds how long a capture waits for fonts to load.
	FontWait time.Duration
	// BlankThreshold is the number of inked sample cells below which a
	// capture counts as blank.
	BlankThreshold int
	// Dir, when set, also receives a copy of every export.
	Dir string
}

// Load reads the configuration, loading envFiles (default ".env") first.
func Load(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load env file", "error", err)
	}

	return Config{
		Port:     getInt("PORT", 8080),
		DBPath:   getEnv("DB_PATH", "./data/quotation.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Export: Export{
			Scale:          getFloat("EXPORT_SCALE", 2),
			JPEGQuality:    getInt("EXPORT_JPEG_QUALITY", 95),
			FontWait:       getDuration("EXPORT_FONT_WAIT", 2*time.Second),
			BlankThreshold: getInt("EXPORT_BLANK_THRESHOLD", 8),
			Dir:            getEnv("EXPORT_DIR", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("Invalid integer setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		slog.Warn("Invalid number setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		slog.Warn("Invalid duration setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
