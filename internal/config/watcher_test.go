package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeConfig(t, path, "[editor]\nquit = \"Ctrl+Q\"\n")

	changes := make(chan *Config, 10)
	errs := make(chan error, 10)
	w, err := NewWatcher(path, func(c *Config) { changes <- c },
		WithDebounce(20*time.Millisecond),
		WithErrorHandler(func(err error) { errs <- err }))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "[editor]\nquit = \"Ctrl+X\"\n")

	select {
	case cfg := <-changes:
		if cfg.Editor.Quit != "Ctrl+X" {
			t.Errorf("reloaded Quit = %q, want Ctrl+X", cfg.Editor.Quit)
		}
	case err := <-errs:
		t.Fatalf("unexpected error %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after change")
	}
}

func TestWatcherReportsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	changes := make(chan *Config, 10)
	errs := make(chan error, 10)
	w, err := NewWatcher(path, func(c *Config) { changes <- c },
		WithDebounce(20*time.Millisecond),
		WithErrorHandler(func(err error) { errs <- err }))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "[editor]\nfiller = \"ab\"\n")

	select {
	case err := <-errs:
		if !IsInvalid(err) {
			t.Errorf("error = %v, want an invalid-config error", err)
		}
	case cfg := <-changes:
		t.Fatalf("unexpected reload %+v", cfg)
	case <-time.After(5 * time.Second):
		t.Fatal("no error after invalid change")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	changes := make(chan *Config, 10)
	w, err := NewWatcher(path, func(c *Config) { changes <- c }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writeConfig(t, filepath.Join(dir, "other.toml"), "x = 1\n")

	select {
	case cfg := <-changes:
		t.Fatalf("unexpected reload %+v", cfg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", FileName)
	if _, err := NewWatcher(path, func(*Config) {}); err == nil {
		t.Error("NewWatcher() on a missing directory should fail")
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	w, err := NewWatcher(path, func(*Config) {})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if w.Path() != path {
		t.Errorf("Path() = %q, want %q", w.Path(), path)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != ErrWatcherClosed {
		t.Errorf("second Close() = %v, want ErrWatcherClosed", err)
	}
}
