package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Ingest        IngestConfig
	Insights      InsightsConfig
	Observability ObservabilityConfig
	Gemini        GeminiConfig
	Market        MarketConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadBytes     int64
}

type IngestConfig struct {
	// DebitIsMagnitude treats values in a debit column as unsigned
	// magnitudes to be negated. Disable for statements that already
	// carry signed debits.
	DebitIsMagnitude bool
}

type InsightsConfig struct {
	RecurringThreshold int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type MarketConfig struct {
	AlphaVantageAPIKey string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present. Missing API keys are not
// an error; the features they unlock degrade to disabled.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("skipping .env file", slog.Any("error", err))
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
			MaxUploadBytes:     getEnvAsInt64("SERVER_MAX_UPLOAD_BYTES", 16<<20),
		},
		Ingest: IngestConfig{
			DebitIsMagnitude: getEnvAsBool("INGEST_DEBIT_IS_MAGNITUDE", true),
		},
		Insights: InsightsConfig{
			RecurringThreshold: getEnvAsInt("INSIGHTS_RECURRING_THRESHOLD", 3),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", ""),
		},
		Market: MarketConfig{
			AlphaVantageAPIKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
