package terminal

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrAlreadyStarted is returned by Start on a session in raw mode.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNotStarted is returned by operations that need raw mode.
	ErrNotStarted = errors.New("session not started")

	// ErrNotTerminal is returned when the input is not a terminal.
	ErrNotTerminal = errors.New("not a terminal")

	// ErrCursorReportTimeout is returned when the terminal does not answer
	// a cursor position request in time.
	ErrCursorReportTimeout = errors.New("cursor position report timed out")

	// ErrEventQueueFull is returned by PostEvent when the queue is full.
	ErrEventQueueFull = errors.New("event queue full")

	// ErrDeviceClosed is returned by operations on a finalized device.
	ErrDeviceClosed = errors.New("device closed")

	// ErrUnknownDevice is returned by Open for an unrecognized device name.
	ErrUnknownDevice = errors.New("unknown terminal device")
)

// ModeError reports a failure to switch the terminal input mode.
type ModeError struct {
	// Op describes the switch, e.g. "enable raw mode".
	Op string

	// Err is the underlying error.
	Err error
}

func (e *ModeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + " failed"
}

func (e *ModeError) Unwrap() error {
	return e.Err
}

// QueryError reports a failed size or cursor position query.
type QueryError struct {
	// Query names what was asked, e.g. "size" or "cursor position".
	Query string

	// Err is the underlying error.
	Err error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query %s: %v", e.Query, e.Err)
	}
	return "query " + e.Query + " failed"
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// DeviceError reports a failed output operation such as clearing the
// screen or flushing.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device %s: %v", e.Op, e.Err)
	}
	return "device " + e.Op + " failed"
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// IsModeError reports whether err is or wraps a *ModeError.
func IsModeError(err error) bool {
	var me *ModeError
	return errors.As(err, &me)
}

// IsQueryError reports whether err is or wraps a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
