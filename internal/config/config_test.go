package config_test

import (
	"testing"
	"time"

	"github.com/abrezinsky/scrumdeck/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.DBPath != "" {
		t.Errorf("expected empty db path (memory store), got %s", cfg.DBPath)
	}
	if cfg.StateDir != ".scrumdeck" {
		t.Errorf("expected default state dir, got %s", cfg.StateDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.IntentTimeout != 10*time.Second {
		t.Errorf("expected default intent timeout 10s, got %s", cfg.IntentTimeout)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("SCRUMDECK_HTTP_ADDR", ":9999")
	t.Setenv("SCRUMDECK_DB_PATH", "/tmp/sessions.db")
	t.Setenv("SCRUMDECK_LOG_HTTP", "true")
	t.Setenv("SCRUMDECK_INTENT_TIMEOUT", "2s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("expected addr :9999, got %s", cfg.HTTPAddr)
	}
	if cfg.DBPath != "/tmp/sessions.db" {
		t.Errorf("expected db path override, got %s", cfg.DBPath)
	}
	if !cfg.LogHTTP {
		t.Error("expected http logging enabled")
	}
	if cfg.IntentTimeout != 2*time.Second {
		t.Errorf("expected intent timeout 2s, got %s", cfg.IntentTimeout)
	}
}

func TestLoad_BadDurationFails(t *testing.T) {
	t.Setenv("SCRUMDECK_INTENT_TIMEOUT", "soon")

	if _, err := config.Load(); err == nil {
		t.Error("expected parse error for bad duration")
	}
}
