package config

import (
	"errors"
	"fmt"
)

// ErrNoConfigDir is returned when the user configuration directory cannot
// be determined.
var ErrNoConfigDir = errors.New("no user config directory")

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes a setting with an unacceptable value.
type ValidationError struct {
	// Path is the dotted setting name, e.g. "editor.quit".
	Path string
	// Value is the rejected value.
	Value any
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Path, e.Value, e.Message)
}

// IsInvalid reports whether err means the configuration file itself is
// bad, as opposed to unreadable.
func IsInvalid(err error) bool {
	var pe *ParseError
	var ve *ValidationError
	return errors.As(err, &pe) || errors.As(err, &ve)
}
