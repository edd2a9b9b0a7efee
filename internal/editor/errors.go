package editor

import (
	"errors"
	"fmt"
)

// Loop errors.
var (
	// ErrInputClosed is returned when the terminal stops delivering input.
	ErrInputClosed = errors.New("terminal input closed")

	// ErrNoQuitBinding indicates a keymap without a quit chord.
	ErrNoQuitBinding = errors.New("keymap has no quit binding")

	// ErrReservedKey indicates an attempt to bind an editing key.
	ErrReservedKey = errors.New("key is reserved for editing")

	// ErrDuplicateBinding indicates a chord bound to two actions.
	ErrDuplicateBinding = errors.New("key is already bound")
)

// BindingError describes a rejected key binding.
type BindingError struct {
	Action Action
	Spec   string
	Err    error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding %s to %q: %v", e.Action, e.Spec, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// RecoveredPanicError wraps a panic value as an error.
// Error includes the stack when one was captured, so it belongs in the log
// and not on the screen.
type RecoveredPanicError struct {
	Value any
	Stack string
}

// NewRecoveredPanicError creates a new RecoveredPanicError.
func NewRecoveredPanicError(value any, stack string) *RecoveredPanicError {
	return &RecoveredPanicError{
		Value: value,
		Stack: stack,
	}
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}
