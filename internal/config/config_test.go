package config

import (
	"testing"
	"time"

	apperrors "go-solar-inspector/internal/errors"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request timeout 30s, got %s", cfg.RequestTimeout)
	}
	if cfg.Thresholds.EdgeInstall != 0.15 || cfg.Thresholds.BlueInstall != 0.20 {
		t.Errorf("Unexpected default install thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Thresholds.EdgeMount != 0.08 || cfg.Thresholds.BlueMount != 0.05 {
		t.Errorf("Unexpected default mount thresholds: %+v", cfg.Thresholds)
	}
	if cfg.FeedbackDBPath != "feedback.db" {
		t.Errorf("Expected default feedback db path, got %s", cfg.FeedbackDBPath)
	}
	if cfg.EnrichmentEnabled() {
		t.Error("Enrichment must be disabled without an API key")
	}
	if cfg.ArchiveEnabled() {
		t.Error("Archiving must be disabled without Azure credentials")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("THRESHOLD_EDGE_INSTALL", "0.30")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REQUEST_TIMEOUT", "45s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.Thresholds.EdgeInstall != 0.30 {
		t.Errorf("Expected edge install threshold 0.30, got %f", cfg.Thresholds.EdgeInstall)
	}
	if !cfg.EnrichmentEnabled() {
		t.Error("Expected enrichment enabled with API key set")
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("Expected request timeout 45s, got %s", cfg.RequestTimeout)
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("Expected error for invalid port")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestLoadFromEnv_InvalidThresholdOrdering(t *testing.T) {
	t.Setenv("THRESHOLD_EDGE_MOUNT", "0.50")

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("Expected error when mount threshold exceeds install threshold")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: "8081"}
	if got := cfg.ServerAddress(); got != "127.0.0.1:8081" {
		t.Errorf("Expected 127.0.0.1:8081, got %s", got)
	}
}
