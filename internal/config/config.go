package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go-solar-inspector/internal/classifier"
	apperrors "go-solar-inspector/internal/errors"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Stage classification thresholds.
	Thresholds classifier.Thresholds

	// Optional AI enrichment.
	OpenAIAPIKey      string
	OpenAIModel       string
	EnrichmentTimeout time.Duration

	// Feedback store and report output.
	FeedbackDBPath string
	ReportsDir     string
	ChartsDir      string

	// Optional Azure blob archive for generated reports.
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// EnrichmentEnabled reports whether an OpenAI key is configured.
func (c *Config) EnrichmentEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// ArchiveEnabled reports whether Azure report archiving is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != "" && c.AzureContainer != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		Thresholds: classifier.Thresholds{
			EdgeInstall: parseFloatOrDefault("THRESHOLD_EDGE_INSTALL", 0.15),
			BlueInstall: parseFloatOrDefault("THRESHOLD_BLUE_INSTALL", 0.20),
			EdgeMount:   parseFloatOrDefault("THRESHOLD_EDGE_MOUNT", 0.08),
			BlueMount:   parseFloatOrDefault("THRESHOLD_BLUE_MOUNT", 0.05),
		},

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		EnrichmentTimeout: parseDurationOrDefault("ENRICHMENT_TIMEOUT", 20*time.Second),

		FeedbackDBPath: getEnvOrDefault("FEEDBACK_DB_PATH", "feedback.db"),
		ReportsDir:     getEnvOrDefault("REPORTS_DIR", "reports"),
		ChartsDir:      getEnvOrDefault("CHARTS_DIR", "charts"),

		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:   os.Getenv("AZURE_REPORT_CONTAINER"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("invalid PORT: %q", cfg.Port), err)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize), nil)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
				cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.AnalysisTimeout), nil)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid classification thresholds", err)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}
