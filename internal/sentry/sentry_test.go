package sentry

import (
	"context"
	"testing"
	"time"
)

func TestInitialize_EmptyDSN(t *testing.T) {
	// Should return nil when DSN is empty (disabled)
	if err := Initialize(Config{DSN: ""}); err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}
}

func TestInitialize_InvalidDSN(t *testing.T) {
	if err := Initialize(Config{DSN: "not a dsn"}); err == nil {
		t.Error("Expected error for malformed DSN")
	}
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state
	err := Initialize(Config{
		DSN:         "https://public@errors.example.com/1",
		Environment: "test",
		Release:     "zoky@test",
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	// Must not panic with an initialized client.
	CaptureRecovered(context.Background(), "boom", map[string]string{"event_type": "message"})

	Flush(time.Second)
}

func TestFlush(t *testing.T) {
	// Flush should complete quickly when there are no events
	Flush(100 * time.Millisecond)
}
