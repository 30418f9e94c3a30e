package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_ShouldLog(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		logLevel Level
		want     bool
	}{
		{"debug logs when min is debug", LevelDebug, LevelDebug, true},
		{"error logs when min is debug", LevelDebug, LevelError, true},
		{"debug does not log when min is info", LevelInfo, LevelDebug, false},
		{"info does not log when min is warn", LevelWarn, LevelInfo, false},
		{"warn logs when min is warn", LevelWarn, LevelWarn, true},
		{"error logs when min is error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.minLevel)
			if got := logger.shouldLog(tt.logLevel); got != tt.want {
				t.Errorf("shouldLog() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriterLogger_WritesJSONEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelInfo, &buf)

	logger.Warn("collector.probe.failed", "Probe failed", map[string]interface{}{
		"probe": "python",
		"code":  2,
	})

	var event Event
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}
	if event.Level != LevelWarn {
		t.Errorf("Expected level %s, got %s", LevelWarn, event.Level)
	}
	if event.Type != "collector.probe.failed" {
		t.Errorf("Expected type 'collector.probe.failed', got %s", event.Type)
	}
	if event.Payload["probe"] != "python" {
		t.Errorf("Expected payload probe 'python', got %v", event.Payload["probe"])
	}
	if event.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestWriterLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelWarn, &buf)

	logger.Debug("test.debug", "Debug message", nil)
	logger.Info("test.info", "Info message", nil)
	logger.Error("test.error", "Error message", nil)

	out := buf.String()
	if strings.Contains(out, "test.debug") || strings.Contains(out, "test.info") {
		t.Errorf("Expected debug and info to be filtered, got: %s", out)
	}
	if !strings.Contains(out, "test.error") {
		t.Errorf("Expected error event, got: %s", out)
	}
}

func TestNilLogger_IsSilent(t *testing.T) {
	var logger *Logger
	logger.Info("test.nil", "Nothing happens", nil)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"WARN", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		configured string
		want       Level
	}{
		{"configured level", "", "info", LevelInfo},
		{"env overrides config", "debug", "info", LevelDebug},
		{"invalid env ignored", "loud", "error", LevelError},
		{"invalid config falls back to warn", "", "loud", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLevel, tt.env)
			if got := ResolveLevel(tt.configured); got != tt.want {
				t.Errorf("ResolveLevel(%q) = %s, want %s", tt.configured, got, tt.want)
			}
		})
	}
}

func TestNewFileLogger_CreatesDirectoryAndAppends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "mlprobe.log")

	for _, eventType := range []string{"test.first", "test.second"} {
		logger, err := NewFileLogger(LevelInfo, logPath)
		if err != nil {
			t.Fatalf("Failed to create file logger: %v", err)
		}
		logger.Info(eventType, "message", nil)
		if err := logger.Close(); err != nil {
			t.Fatalf("Failed to close logger: %v", err)
		}
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %s", len(lines), content)
	}
	if !strings.Contains(lines[1], "test.second") {
		t.Errorf("Second event was not appended: %s", lines[1])
	}
}
