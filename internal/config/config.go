// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	DBPath   string
	LogLevel string
	NoColor  bool
	Seed     ServerSeed
}

// ServerSeed pre-populates the connection settings the first time the local
// store is created. Existing settings are never overwritten by it.
type ServerSeed struct {
	BaseURL string
	Port    string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:   getEnv("RASMAN_DB_PATH", defaultDBPath()),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "warn")),
		NoColor:  getEnvBool("NO_COLOR", false),
		Seed: ServerSeed{
			BaseURL: getEnv("RAS_BASE_URL", ""),
			Port:    getEnv("RAS_PORT", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("RASMAN_DB_PATH cannot be empty")
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	if lvl, ok := logLevels[c.LogLevel]; ok {
		return lvl
	}
	return slog.LevelWarn
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data/rasman.db"
	}
	return filepath.Join(home, ".rasman", "rasman.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
