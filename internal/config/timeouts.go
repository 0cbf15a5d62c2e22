// Package config provides centralized timeout constants for the application.
//
// Messenger expects the webhook to answer within a few seconds and redelivers
// events that are not acknowledged, so the HTTP layer acknowledges first and
// processes afterwards. Outbound calls get their own per-call budgets.
package config

import "time"

// Webhook timeouts
const (
	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Messenger sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	WebhookHTTPWrite = 15 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second

	// WebhookProcessing bounds the processing of one webhook batch after it
	// has been acknowledged.
	WebhookProcessing = 60 * time.Second
)

// Outbound timeouts
const (
	// SendRequest is the timeout for a single Send API call.
	SendRequest = 10 * time.Second

	// SearchRequest is the timeout for a single search API call.
	SearchRequest = 10 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 5 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background jobs
const (
	// DefaultSessionSweepSpec is the cron spec for dropping idle sessions.
	DefaultSessionSweepSpec = "@every 5m"

	// DefaultCacheCleanupSpec is the cron spec for deleting expired search cache rows.
	DefaultCacheCleanupSpec = "@every 1h"

	// ReadinessCheckTimeout bounds the dependency checks behind /readyz.
	ReadinessCheckTimeout = 3 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	GracefulShutdown = 30 * time.Second
)
