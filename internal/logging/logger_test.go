package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
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
			t.Errorf("Level(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		valid    bool
	}{
		{"debug", LevelDebug, true},
		{"DEBUG", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{" Error ", LevelError, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
		if got := ValidLevel(tt.input); got != tt.valid {
			t.Errorf("ValidLevel(%q) = %v, expected %v", tt.input, got, tt.valid)
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf, Prefix: "test"})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	for _, want := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]", "test: "} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLogger_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")

	output := buf.String()
	if strings.Contains(output, "[DEBUG]") || strings.Contains(output, "[INFO]") {
		t.Errorf("expected debug and info to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "[WARN]") {
		t.Error("expected WARN in output")
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.Info("formatted %s %d", "test", 42)

	if !strings.Contains(buf.String(), "formatted test 42") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.WithFields(map[string]any{"zeta": 1, "alpha": "a"}).WithComponent("session").Info("x")

	output := buf.String()
	if !strings.Contains(output, "{alpha=a, component=session, zeta=1}") {
		t.Errorf("expected sorted fields, got: %s", output)
	}
}

func TestLogger_DerivedSharesLevelChanges(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LevelInfo, Output: &buf})
	child := parent.WithComponent("editor")

	child.Info("first")
	if buf.Len() == 0 {
		t.Fatal("expected output from child logger")
	}

	parent.SetLevel(LevelError)
	buf.Reset()
	child.Warn("filtered")
	if buf.Len() != 0 {
		t.Errorf("child ignored the parent's new level: %q", buf.String())
	}
	if child.Level() != LevelError {
		t.Errorf("child level = %v, want ERROR", child.Level())
	}

	child.SetLevel(LevelDebug)
	if parent.Level() != LevelDebug {
		t.Errorf("parent level = %v, want DEBUG", parent.Level())
	}
}

func TestNullLogger(t *testing.T) {
	Null.Debug("test")
	Null.Error("test")
	Null.WithField("a", 1).Warn("test")

	var nilLogger *Logger
	nilLogger.Info("nil receiver is a no-op")
}

func TestDefault(t *testing.T) {
	l := Default()
	if l == nil {
		t.Fatal("Default() returned nil")
	}
	if Default() != l {
		t.Error("expected Default() to return the same instance")
	}

	var buf bytes.Buffer
	custom := New(Config{Output: &buf})
	SetDefault(custom)
	defer SetDefault(l)
	if Default() != custom {
		t.Error("expected SetDefault to replace the logger")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilde.log")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	logger := New(Config{Level: LevelInfo, Output: f})
	logger.Error("query failed")
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "query failed") {
		t.Errorf("log file missing message: %q", data)
	}
}
