package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"", LevelInfo},
		{"loud", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func newTestLogger(buf *bytes.Buffer, level Level) *Logger {
	l := New(Config{Level: level, Output: buf, Prefix: "test"})
	l.sink.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelDebug)

	l.WithComponent("sync").WithField("id", "abc").Info("patched %d ranges", 2)

	want := "2026-01-02T03:04:05.000 [INFO] test: patched 2 ranges {component=sync, id=abc}\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")

	if n := strings.Count(buf.String(), "shown"); n != 2 {
		t.Errorf("wrote %d messages, want 2:\n%s", n, buf.String())
	}
	if strings.Contains(buf.String(), "hidden") {
		t.Error("messages below the level should be dropped")
	}
}

func TestDerivedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelError)
	child := l.WithComponent("child")

	l.SetLevel(LevelDebug)
	child.Debug("now visible")

	if !strings.Contains(buf.String(), "now visible") {
		t.Error("child logger should follow the parent's level")
	}
	if !child.Enabled(LevelDebug) {
		t.Error("Enabled(LevelDebug) = false")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("dropped")
	if l.Enabled(LevelError) {
		t.Error("Nop logger should not be enabled")
	}
}
