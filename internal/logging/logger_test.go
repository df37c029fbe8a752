package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transcriptor/internal/config"
	"transcriptor/internal/logging"
	"transcriptor/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Debug("debug message")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: io.Discard, File: logPath})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug-level logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersSubjectFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithItemIndex(context.Background(), 2)
	ctx = services.WithProvider(ctx, "yt-dlp")
	ctx = services.WithRequestID(ctx, "run-1")
	logger = logging.NewComponentLogger(logging.WithContext(ctx, logger), "extractor")
	logger.Info("transcript extracted", logging.VideoID("dQw4w9WgXcQ"), logging.Int("word_count", 2))

	out := buf.String()
	for _, fragment := range []string{"INFO [extractor] Item #2 (yt-dlp)", "transcript extracted", "Video: dQw4w9WgXcQ", "Words: 2"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output %q", fragment, out)
		}
	}
	if strings.Contains(out, "run-1") {
		t.Fatalf("expected correlation id hidden at info level, got %q", out)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "run-42")
	logging.WithContext(ctx, logger).Info("batch started")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["msg"] != "batch started" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload[logging.FieldCorrelationID] != "run-42" {
		t.Fatalf("expected correlation id, got %v", payload[logging.FieldCorrelationID])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts field")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "primary provider failed", "provider_failed",
		logging.String(logging.FieldImpact, "falling back to yt-dlp"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload[logging.FieldEventType] != "provider_failed" {
		t.Fatalf("unexpected event type: %v", payload[logging.FieldEventType])
	}
	if payload[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default hint, got %v", payload[logging.FieldErrorHint])
	}
	if payload[logging.FieldImpact] != "falling back to yt-dlp" {
		t.Fatalf("expected caller impact preserved, got %v", payload[logging.FieldImpact])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected no-op logger to be disabled")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
