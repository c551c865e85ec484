package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.log")
	logger, err := NewLogger("info", true, path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	WithRunID(WithComponent(logger, "exporter"), "run-1").Info("Export started", zap.Int("markers", 3))
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	content := string(data)
	for _, want := range []string{`"component":"exporter"`, `"run_id":"run-1"`, `"markers":3`} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %s in log output:\n%s", want, content)
		}
	}
	if strings.Contains(content, "hidden") {
		t.Error("Expected debug entry to be filtered at info level")
	}
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	if _, err := NewLogger("loud", false, ""); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestSanitizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("No home directory available")
	}

	if got := SanitizePath(filepath.Join(home, "Movies", "a.mov")); got != filepath.Join("~", "Movies", "a.mov") {
		t.Errorf("Expected home to be masked, got %q", got)
	}
	if got := SanitizePath("/tmp/a.mov"); got != "/tmp/a.mov" && !strings.HasPrefix(home, "/tmp") {
		t.Errorf("Expected path outside home unchanged, got %q", got)
	}
	if got := SanitizePath(home + "other"); got != home+"other" {
		t.Errorf("Expected sibling path unchanged, got %q", got)
	}
}
