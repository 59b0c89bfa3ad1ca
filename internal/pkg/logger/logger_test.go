package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := WithRequest(New(&buf, slog.LevelInfo, "json"), "req-1")
	log.Debug("hidden")
	log.Info("shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["request_id"] != "req-1" || entry["k"] != "v" || entry["msg"] != "shown" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["source"]; !ok {
		t.Error("expected source attribute")
	}
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.log")
	log, err := SetupLogger(Config{Level: slog.LevelInfo, LogFile: path, Format: "text"})
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	log.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == "" || a == b {
		t.Errorf("request ids not unique: %q %q", a, b)
	}
}
