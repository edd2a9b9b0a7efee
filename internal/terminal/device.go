package terminal

import (
	"fmt"
	"strings"
	"time"
)

// Device is the terminal control surface a Session drives.
//
// Output calls (Clear, SetCell, ShowCursor) may be buffered until Show.
// PollEvent blocks; every other method returns promptly.
type Device interface {
	// Init puts the terminal in raw mode and prepares it for output.
	Init() error

	// Fini restores the terminal to the mode it had before Init.
	Fini() error

	// Size returns the current terminal dimensions.
	Size() (Size, error)

	// CursorPosition asks the terminal where its cursor is.
	CursorPosition() (Position, error)

	// Clear erases the whole screen and homes the cursor.
	Clear() error

	// SetCell writes a cell. Positions outside the screen are ignored.
	SetCell(col, row int, cell Cell)

	// ShowCursor moves the visible cursor.
	ShowCursor(col, row int)

	// Show makes pending output visible.
	Show() error

	// PollEvent waits for and returns the next event.
	PollEvent() Event

	// PostEvent queues a synthetic event for PollEvent.
	PostEvent(ev Event) error
}

// Device names accepted by Open.
const (
	DeviceANSI  = "ansi"
	DeviceTcell = "tcell"
)

// DefaultCursorReportTimeout bounds the wait for a cursor position report.
const DefaultCursorReportTimeout = 500 * time.Millisecond

// DeviceOptions configures a device created by Open.
type DeviceOptions struct {
	// CursorReportTimeout bounds the wait for a cursor position reply.
	// Zero uses DefaultCursorReportTimeout.
	CursorReportTimeout time.Duration
}

// Open creates the named device attached to the process terminal.
func Open(name string, opts DeviceOptions) (Device, error) {
	if opts.CursorReportTimeout <= 0 {
		opts.CursorReportTimeout = DefaultCursorReportTimeout
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DeviceANSI:
		return openANSI(opts)
	case DeviceTcell:
		return NewTcellDevice()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}
}

// ValidDevice reports whether name is accepted by Open.
func ValidDevice(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case DeviceANSI, DeviceTcell:
		return true
	}
	return false
}
