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
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := WithRequest(newLogger(&buf, Config{Level: slog.LevelInfo, Format: "json"}), "42")
	log.Debug("hidden")
	log.Info("resolved", "connections", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "resolved" || entry["request_id"] != "42" || entry["connections"] != float64(3) {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["source"]; !ok {
		t.Error("expected source attribute")
	}
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.log")
	log, err := SetupLogger(Config{Level: slog.LevelInfo, LogFile: path, Format: "text"})
	if err != nil {
		t.Fatalf("SetupLogger() error: %v", err)
	}
	log.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Errorf("log file = %q", data)
	}
}
