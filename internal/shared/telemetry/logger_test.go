package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWriteIncludesLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("staging.cleanup_failed", map[string]any{
		"staged_key": "file:u1:1",
		"error":      errors.New("redis down"),
		"msg":        "overridden",
	})

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected level warn, got %v", payload["level"])
	}
	if payload["msg"] != "staging.cleanup_failed" {
		t.Fatalf("expected msg to win over fields, got %v", payload["msg"])
	}
	if payload["error"] != "redis down" {
		t.Fatalf("expected error string, got %v", payload["error"])
	}
	if payload["ts"] == "" {
		t.Fatalf("expected ts")
	}
}

func TestReservedFieldsDoNotOverrideEnvelope(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("pipeline.classify", map[string]any{"level": "debug", "ts": "yesterday", "duration_ms": int64(12)})
	Error("pipeline.analyze", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first line: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second line: %v", err)
	}
	if first["level"] != "info" || first["ts"] == "yesterday" || first["duration_ms"] != float64(12) {
		t.Fatalf("unexpected first line %v", first)
	}
	if second["level"] != "error" || second["msg"] != "pipeline.analyze" {
		t.Fatalf("unexpected second line %v", second)
	}
}
