package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RASMAN_DB_PATH", "/tmp/rasman-test.db")
	t.Setenv("LOG_LEVEL", "INFO")
	t.Setenv("RAS_BASE_URL", "http://localhost")
	t.Setenv("RAS_PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/rasman-test.db" {
		t.Errorf("expected db path from env, got %q", cfg.DBPath)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.SlogLevel())
	}
	if cfg.Seed.BaseURL != "http://localhost" || cfg.Seed.Port != "8080" {
		t.Errorf("unexpected seed: %+v", cfg.Seed)
	}
}

func TestValidateRejectsUnknownLevel(t *testing.T) {
	cfg := &Config{DBPath: "x.db", LogLevel: "verbose"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestValidateRejectsEmptyDBPath(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty db path")
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("RASMAN_FLAG", "yes")
	if !getEnvBool("RASMAN_FLAG", false) {
		t.Error("expected yes to parse as true")
	}
	t.Setenv("RASMAN_FLAG", "nonsense")
	if getEnvBool("RASMAN_FLAG", false) {
		t.Error("expected fallback for unparseable value")
	}
}
