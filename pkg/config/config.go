package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Dataset
	DataFile   string // path to the persisted JSON dataset
	EpochStart string // first date fetched on a fresh start (YYYY-MM-DD)

	// Universe
	UniverseURL string

	// Market data
	Yahoo YahooConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// YahooConfig holds Yahoo Finance client configuration
type YahooConfig struct {
	ChartBaseURL string
	QuoteBaseURL string
	Timeout      time.Duration
	RatePerSec   float64 // metadata requests per second
	Concurrency  int     // parallel per-ticker fetches
	MaxRetries   int     // transport retries per request
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Dataset
		DataFile:   getEnv("DATA_FILE", "nasdaq_data.json"),
		EpochStart: getEnv("EPOCH_START", "2020-01-01"),

		// Universe
		UniverseURL: getEnv("UNIVERSE_URL", "https://en.wikipedia.org/wiki/Nasdaq-100"),

		// Market data
		Yahoo: YahooConfig{
			ChartBaseURL: getEnv("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			QuoteBaseURL: getEnv("YAHOO_QUOTE_BASE_URL", "https://query1.finance.yahoo.com/v10/finance/quoteSummary"),
			Timeout:      getEnvAsDuration("YAHOO_TIMEOUT", "30s"),
			RatePerSec:   getEnvAsFloat("YAHOO_RATE_PER_SEC", 4),
			Concurrency:  getEnvAsInt("YAHOO_CONCURRENCY", 8),
			MaxRetries:   getEnvAsInt("YAHOO_MAX_RETRIES", 3),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.DataFile == "" {
		return fmt.Errorf("DATA_FILE must not be empty")
	}

	if _, err := time.Parse("2006-01-02", c.EpochStart); err != nil {
		return fmt.Errorf("EPOCH_START must be YYYY-MM-DD: %w", err)
	}

	if c.Yahoo.Concurrency < 1 {
		return fmt.Errorf("YAHOO_CONCURRENCY must be >= 1")
	}

	if c.Yahoo.MaxRetries < 0 {
		return fmt.Errorf("YAHOO_MAX_RETRIES must be >= 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
