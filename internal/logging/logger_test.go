package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "out.log")

	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("converted", String("source", "a.dwfx"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"converted"`) {
		t.Fatalf("log output missing message: %s", data)
	}
	if !strings.Contains(string(data), `"source":"a.dwfx"`) {
		t.Fatalf("log output missing attr: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	for _, value := range []string{"", "verbose", "INFO"} {
		if got := parseLevel(value); got != slog.LevelInfo {
			t.Fatalf("parseLevel(%q) = %v, want info", value, got)
		}
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("parseLevel(debug) = %v", got)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}

func TestConsoleHandlerOrdersComponentFirst(t *testing.T) {
	var sb strings.Builder
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&sb, lvl)).With(String(FieldComponent, "watcher"))

	logger.Info("released", String("path", "/in/a.dwfx"))

	line := sb.String()
	compIdx := strings.Index(line, "component=watcher")
	pathIdx := strings.Index(line, "path=/in/a.dwfx")
	if compIdx < 0 || pathIdx < 0 || compIdx > pathIdx {
		t.Fatalf("unexpected attr ordering: %s", line)
	}
}
