package app

import (
	"errors"

	"github.com/dshills/tilde/internal/config"
	"github.com/dshills/tilde/internal/editor"
)

// ErrAlreadyRunning indicates the application is already running.
var ErrAlreadyRunning = errors.New("application already running")

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitInvalidConfig = 2
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error from New or Run to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var be *editor.BindingError
	if config.IsInvalid(err) || errors.As(err, &be) {
		return ExitInvalidConfig
	}
	return ExitFailure
}
