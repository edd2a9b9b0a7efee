package config

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dshills/tilde/internal/input/key"
	"github.com/dshills/tilde/internal/logging"
	"github.com/dshills/tilde/internal/terminal"
)

// Config is the complete configuration.
type Config struct {
	Terminal TerminalConfig `toml:"terminal"`
	Editor   EditorConfig   `toml:"editor"`
	Log      LogConfig      `toml:"log"`
}

// TerminalConfig selects and tunes the terminal device.
type TerminalConfig struct {
	// Device is "ansi" or "tcell".
	Device string `toml:"device"`

	// CursorReportTimeout bounds the wait for a cursor position reply.
	CursorReportTimeout Duration `toml:"cursor_report_timeout"`
}

// EditorConfig holds the key bindings and glyphs of the editor loop.
type EditorConfig struct {
	// Quit is the key specification of the quit chord.
	Quit string `toml:"quit"`

	// Diagnostic is the key specification of the diagnostic chord.
	Diagnostic string `toml:"diagnostic"`

	// Filler is the single character painted on empty rows.
	Filler string `toml:"filler"`

	// SentinelColumn is where the cursor rests on row 0 after drawing.
	SentinelColumn int `toml:"sentinel_column"`

	// Goodbye is printed when the editor quits.
	Goodbye string `toml:"goodbye"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Terminal: TerminalConfig{
			Device:              terminal.DeviceANSI,
			CursorReportTimeout: Duration{terminal.DefaultCursorReportTimeout},
		},
		Editor: EditorConfig{
			Quit:           "Ctrl+Q",
			Diagnostic:     "Ctrl+G",
			Filler:         string(terminal.DefaultFiller),
			SentinelColumn: terminal.DefaultSentinelColumn,
			Goodbye:        "Goodbye.",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks every setting and returns the first problem found as a
// *ValidationError.
func (c *Config) Validate() error {
	if !terminal.ValidDevice(c.Terminal.Device) {
		return &ValidationError{Path: "terminal.device", Value: c.Terminal.Device, Message: `must be "ansi" or "tcell"`}
	}
	if c.Terminal.CursorReportTimeout.Duration <= 0 {
		return &ValidationError{Path: "terminal.cursor_report_timeout", Value: c.Terminal.CursorReportTimeout, Message: "must be positive"}
	}
	if err := validateChord("editor.quit", c.Editor.Quit); err != nil {
		return err
	}
	if err := validateChord("editor.diagnostic", c.Editor.Diagnostic); err != nil {
		return err
	}
	if utf8.RuneCountInString(c.Editor.Filler) != 1 {
		return &ValidationError{Path: "editor.filler", Value: c.Editor.Filler, Message: "must be a single character"}
	}
	if terminal.RuneWidth(c.FillerRune()) != 1 {
		return &ValidationError{Path: "editor.filler", Value: c.Editor.Filler, Message: "must be one cell wide"}
	}
	if c.Editor.SentinelColumn < 0 {
		return &ValidationError{Path: "editor.sentinel_column", Value: c.Editor.SentinelColumn, Message: "must not be negative"}
	}
	if !logging.ValidLevel(c.Log.Level) {
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"}
	}
	return nil
}

// validateChord checks that spec parses and names a chord a terminal can
// deliver as itself.
func validateChord(path, spec string) error {
	ev, err := key.Parse(spec)
	if err != nil {
		return &ValidationError{Path: path, Value: spec, Message: err.Error()}
	}
	if delivered := ev.Canonical(); !delivered.Equals(ev) {
		return &ValidationError{Path: path, Value: spec, Message: "terminals send it as " + delivered.String()}
	}
	return nil
}

// FillerRune returns the filler glyph.
func (c *Config) FillerRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Editor.Filler)
	return r
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
