package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf)
	ctx := context.Background()

	log.Info(ctx, "inf", "a", 1)
	log.Warn(ctx, "wrn", "b", 2)
	log.Error(ctx, "err", "c", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 records, got %d:\n%s", len(lines), buf.String())
	}

	tests := []struct {
		level string
		msg   string
		key   string
		val   float64
	}{
		{"INFO", "inf", "a", 1},
		{"WARN", "wrn", "b", 2},
		{"ERROR", "err", "c", 3},
	}

	for i, tc := range tests {
		var rec map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &rec); err != nil {
			t.Fatalf("record %d is not JSON: %v", i, err)
		}
		if rec["level"] != tc.level {
			t.Fatalf("record %d: want level %s, got %v", i, tc.level, rec["level"])
		}
		if rec["msg"] != tc.msg {
			t.Fatalf("record %d: want msg %s, got %v", i, tc.msg, rec["msg"])
		}
		if rec[tc.key] != tc.val {
			t.Fatalf("record %d: want %s=%v, got %v", i, tc.key, tc.val, rec[tc.key])
		}
	}
}

func TestJSONLogger_WithCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf)

	child := log.With("module", "http_server")
	child.Info(context.Background(), "hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["module"] != "http_server" {
		t.Fatalf("child logger must carry module attr, got %v", rec["module"])
	}
	if rec["k"] != "v" {
		t.Fatalf("call-site attr missing, got %v", rec["k"])
	}
}
