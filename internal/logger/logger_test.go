package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"detectwidget/internal/config"
)

func TestNewLogger_CreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := NewLogger(&config.Config{LogDirectory: dir})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	l.Error("upload failed: %s", "connection refused")

	data, err := os.ReadFile(filepath.Join(dir, "error.log"))
	if err != nil {
		t.Fatalf("Failed to read error.log: %v", err)
	}
	if !strings.Contains(string(data), "connection refused") {
		t.Errorf("Expected error entry in error.log, got %q", data)
	}

	for _, name := range Levels {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestCleanLogs(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(&config.Config{LogDirectory: dir})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	l.Warning("malformed history")
	if err := l.CleanLogs("warning.log"); err != nil {
		t.Fatalf("CleanLogs failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "warning.log"))
	if len(data) != 0 {
		t.Errorf("Expected empty warning.log, got %q", data)
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Info("hello %d", 1)
	l.Warning("careful")

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "hello 1") {
		t.Errorf("Missing info entry: %q", out)
	}
	if !strings.Contains(out, "WARNING") {
		t.Errorf("Missing warning entry: %q", out)
	}
	if err := l.CleanLogs("info.log"); err != nil {
		t.Errorf("CleanLogs on writer logger should be a no-op, got %v", err)
	}
}
