// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Messenger (Required)
	EnvVerifyToken     = "ZOKY_VERIFY_TOKEN"
	EnvPageAccessToken = "ZOKY_PAGE_ACCESS_TOKEN"
	EnvAppSecret       = "ZOKY_APP_SECRET"
	EnvGraphAPIBaseURL = "ZOKY_GRAPH_API_BASE_URL"

	// Search APIs
	EnvMovieAPIURL    = "ZOKY_MOVIE_API_URL"
	EnvMovieAPIKey    = "ZOKY_MOVIE_API_KEY"
	EnvFootballAPIURL = "ZOKY_FOOTBALL_API_URL"
	EnvFootballAPIKey = "ZOKY_FOOTBALL_API_KEY"

	// Server
	EnvPort            = "ZOKY_PORT"
	EnvLogLevel        = "ZOKY_LOG_LEVEL"
	EnvShutdownTimeout = "ZOKY_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir        = "ZOKY_DATA_DIR"
	EnvSearchCacheTTL = "ZOKY_SEARCH_CACHE_TTL"
	EnvSessionTTL     = "ZOKY_SESSION_TTL"

	// Outbound
	EnvSendTimeout   = "ZOKY_SEND_TIMEOUT"
	EnvSearchTimeout = "ZOKY_SEARCH_TIMEOUT"

	// Background Tasks
	EnvSessionSweepSpec = "ZOKY_SESSION_SWEEP_SPEC"
	EnvCacheCleanupSpec = "ZOKY_CACHE_CLEANUP_SPEC"

	// Sentry Feature
	EnvSentryDSN         = "ZOKY_SENTRY_DSN"
	EnvSentryEnvironment = "ZOKY_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "ZOKY_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken = "ZOKY_BETTERSTACK_TOKEN"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "ZOKY_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "ZOKY_METRICS_USERNAME"
	EnvMetricsPassword    = "ZOKY_METRICS_PASSWORD"
)

// Variable names used by earlier deployments of the bot. They are read
// when the ZOKY_* key is unset so existing .env files keep working.
//
//nolint:gosec,revive
const (
	legacyVerifyToken    = "VERIFY_TOKEN"
	legacyAccessToken    = "access_token"
	legacyMovieAPIURL    = "movieApi"
	legacyMovieAPIKey    = "movieApikey"
	legacyFootballAPIURL = "footballApi"
	legacyFootballAPIKey = "apikey"
	legacyPort           = "PORT"
)
