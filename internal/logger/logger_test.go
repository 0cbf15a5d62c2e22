package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/zokybot/zoky-messenger-go/internal/ctxutil"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter_RenamesStandardKeys(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Warn("careful")

	entry := decodeLine(t, &buf)
	if entry["message"] != "careful" {
		t.Errorf("message = %v, want %q", entry["message"], "careful")
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want %q", entry["level"], "warning")
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp key missing")
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output for info at warn level, got %s", buf.String())
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.WithModule("webhook").
		WithRequestID("req-123").
		WithField("entries", 2).
		WithFields(map[string]any{"object": "page"}).
		WithError(errors.New("boom")).
		Info("batch received")

	entry := decodeLine(t, &buf)
	want := map[string]any{
		"module":     "webhook",
		"request_id": "req-123",
		"entries":    float64(2),
		"object":     "page",
		"error":      "boom",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestLogger_ContextValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithSenderID(context.Background(), "psid-1")
	log.InfoContext(ctx, "postback handled")

	entry := decodeLine(t, &buf)
	if entry["sender_id"] != "psid-1" {
		t.Errorf("sender_id = %v, want %q", entry["sender_id"], "psid-1")
	}
}

func TestLogger_ShutdownWithoutRemote(t *testing.T) {
	log := NewWithWriter("info", io.Discard)
	if err := log.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() without remote sink returned %v", err)
	}
	if got := log.Dropped(); got != 0 {
		t.Errorf("Dropped() without remote sink = %d, want 0", got)
	}
}
