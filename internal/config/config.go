// Package config provides application configuration management.
// It loads settings from a .env file and environment variables and provides
// defaults for the server, the Messenger Send API, the search APIs and
// background jobs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Messenger Configuration
	VerifyToken     string // Token echoed back during the subscription handshake
	PageAccessToken string // Page access token for the Send API
	AppSecret       string // Optional: enables X-Hub-Signature-256 verification
	GraphAPIBaseURL string

	// Search Configuration
	Search SearchConfig

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string

	// Error reporting / log shipping
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64
	BetterStackToken  string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir        string        // Data directory for the SQLite search cache
	SearchCacheTTL time.Duration // How long a poster lookup stays cached
	SessionTTL     time.Duration // Idle time after which a sender's mode is forgotten

	// Outbound Configuration
	SendTimeout   time.Duration
	SearchTimeout time.Duration

	// Background jobs (cron specs)
	SessionSweepSpec string
	CacheCleanupSpec string
}

// SearchConfig holds the per-topic search endpoints.
type SearchConfig struct {
	MovieURL    string
	MovieKey    string
	FootballURL string
	FootballKey string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env files (ignore error if file doesn't exist)
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join("config", ".env"))

	cfg := &Config{
		VerifyToken:     getEnvWithFallback(EnvVerifyToken, legacyVerifyToken, ""),
		PageAccessToken: getEnvWithFallback(EnvPageAccessToken, legacyAccessToken, ""),
		AppSecret:       getEnv(EnvAppSecret, ""),
		GraphAPIBaseURL: strings.TrimRight(getEnv(EnvGraphAPIBaseURL, "https://graph.facebook.com/v2.6"), "/"),

		Search: SearchConfig{
			MovieURL:    getEnvWithFallback(EnvMovieAPIURL, legacyMovieAPIURL, "https://www.omdbapi.com/"),
			MovieKey:    getEnvWithFallback(EnvMovieAPIKey, legacyMovieAPIKey, ""),
			FootballURL: getEnvWithFallback(EnvFootballAPIURL, legacyFootballAPIURL, ""),
			FootballKey: getEnvWithFallback(EnvFootballAPIKey, legacyFootballAPIKey, ""),
		},

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
		BetterStackToken:  getEnv(EnvBetterStackToken, ""),

		Port:            getEnvWithFallback(EnvPort, legacyPort, "8989"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		DataDir:        getEnv(EnvDataDir, getDefaultDataDir()),
		SearchCacheTTL: getDurationEnv(EnvSearchCacheTTL, 24*time.Hour),
		SessionTTL:     getDurationEnv(EnvSessionTTL, 30*time.Minute),

		SendTimeout:   getDurationEnv(EnvSendTimeout, SendRequest),
		SearchTimeout: getDurationEnv(EnvSearchTimeout, SearchRequest),

		SessionSweepSpec: getEnv(EnvSessionSweepSpec, DefaultSessionSweepSpec),
		CacheCleanupSpec: getEnv(EnvCacheCleanupSpec, DefaultCacheCleanupSpec),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.VerifyToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvVerifyToken))
	}
	if c.PageAccessToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPageAccessToken))
	}
	if c.GraphAPIBaseURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvGraphAPIBaseURL))
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.SearchCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSearchCacheTTL, c.SearchCacheTTL))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSessionTTL, c.SessionTTL))
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSendTimeout, c.SendTimeout))
	}
	if c.SearchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSearchTimeout, c.SearchTimeout))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvWithFallback reads key, then legacyKey, then falls back to defaultValue.
func getEnvWithFallback(key, legacyKey, defaultValue string) string {
	return getEnv(key, getEnv(legacyKey, defaultValue))
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite search cache file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "search_cache.db")
}

// HasBetterStack reports whether remote log shipping is configured.
func (c *Config) HasBetterStack() bool {
	return c.BetterStackToken != ""
}
