package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func resetLogging(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer

	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	mutex.Unlock()

	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Initialize(Config{Level: "warn", Format: "text"})
		mutex.Lock()
		moduleLoggers = make(map[string]*slog.Logger)
		mutex.Unlock()
	})
	return &buf
}

func TestLevels(t *testing.T) {
	resetLogging(t)
	Initialize(Config{Level: "info", Format: "text"})

	handler := GetLogger("pipeline").Handler()
	ctx := context.Background()

	if handler.Enabled(ctx, slog.LevelDebug) {
		t.Error("debug should be disabled at info")
	}
	if !handler.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be enabled at info")
	}

	// Loggers created before Initialize follow later level changes.
	Initialize(Config{Level: "debug", Format: "text"})
	if !GetLogger("pipeline").Handler().Enabled(ctx, slog.LevelDebug) {
		t.Error("debug should be enabled after re-initialization")
	}
}

func TestUnknownLevelFallsBackToWarn(t *testing.T) {
	resetLogging(t)
	Initialize(Config{Level: "chatty"})

	handler := GetLogger("cli").Handler()
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at the warn fallback")
	}
	if !handler.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled")
	}
}

func TestModuleAttribute(t *testing.T) {
	buf := resetLogging(t)
	Initialize(Config{Level: "debug", Format: "text"})

	GetLogger("decoder").Debug("opened", "codec", "ffv1")

	out := buf.String()
	for _, want := range []string{"module=decoder", "msg=opened", "codec=ffv1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	buf := resetLogging(t)
	Initialize(Config{Level: "warn", Format: "json"})

	GetLogger("pipeline").Warn("slow", "frames", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["module"] != "pipeline" || rec["msg"] != "slow" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestGetLoggerCaches(t *testing.T) {
	resetLogging(t)
	if GetLogger("a") != GetLogger("a") {
		t.Error("GetLogger should return the same logger for a module")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", 0, false},
		{"verbose", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
