package jsonlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_EmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "info"})

	l.Info("http_request", map[string]any{
		"status": 201,
		"path":   "/api/todos",
	})

	line := strings.TrimSpace(buf.String())
	if strings.Count(line, "\n") != 0 {
		t.Fatalf("expected one line, got %q", line)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("not JSON: %v; line=%s", err, line)
	}
	if m["msg"] != "http_request" {
		t.Fatalf("msg=%v", m["msg"])
	}
	if m["path"] != "/api/todos" {
		t.Fatalf("path=%v", m["path"])
	}
	if _, ok := m["status"]; !ok {
		t.Fatalf("missing status field: %s", line)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "warn"})

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}

	l.Error("visible", map[string]any{"err": errors.New("boom")})
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error text in output, got %s", buf.String())
	}
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *Logger
	l.Info("nothing", map[string]any{"k": "v"})
}
