// Package app wires tilde together: configuration, logging, the terminal
// device and session, the editor loop and the configuration watcher.
package app

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/tilde/internal/config"
	"github.com/dshills/tilde/internal/editor"
	"github.com/dshills/tilde/internal/logging"
	"github.com/dshills/tilde/internal/terminal"
)

// Application owns every component of a tilde process.
type Application struct {
	config     *config.Config
	configPath string

	logger    *logging.Logger
	logFile   *os.File
	logHold   *logging.HeldWriter
	sessionID string

	device  terminal.Device
	session *terminal.Session
	editor  *editor.Editor
	watcher *config.Watcher

	running   atomic.Bool
	closeOnce sync.Once
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses config.DefaultPath.
	ConfigPath string

	// Device replaces the device named in the configuration.
	Device terminal.Device

	// LogOutput replaces the log destination named in the configuration.
	// Like stderr, it is held while the editor owns the terminal.
	LogOutput io.Writer

	// DisableWatch turns off configuration reloading.
	DisableWatch bool
}

// New creates an Application. Components initialized before a failure are
// released again.
func New(opts Options) (*Application, error) {
	app := &Application{}
	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run runs the editor until it quits. The terminal is restored before Run
// returns.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.logger.Info("starting on %s device with %s", app.config.Terminal.Device, app.editor.Keymap())
	err := app.runEditor()
	if err != nil {
		app.logger.Error("editor stopped: %v", err)
	} else {
		app.logger.Info("editor quit")
	}
	return err
}

// runEditor runs the loop with terminal-bound log output held until the
// terminal is restored.
func (app *Application) runEditor() error {
	if app.logHold == nil {
		return app.editor.Run()
	}
	app.logHold.Hold()
	defer func() { _ = app.logHold.Release() }()
	return app.editor.Run()
}

// RequestQuit asks the running editor to quit. It is safe to call from any
// goroutine.
func (app *Application) RequestQuit() error {
	return app.session.PostEvent(terminal.InterruptEvent(editor.ActionQuit))
}

// Close stops the configuration watcher and closes the log file.
func (app *Application) Close() {
	app.closeOnce.Do(func() {
		if app.watcher != nil {
			if err := app.watcher.Close(); err != nil {
				app.logger.Warn("closing config watcher: %v", err)
			}
		}
		if app.logFile != nil {
			_ = app.logFile.Close()
		}
	})
}

// IsRunning returns true while Run is executing.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration loaded at startup.
func (app *Application) Config() *config.Config {
	return app.config
}

// ConfigPath returns the configuration file path in use.
func (app *Application) ConfigPath() string {
	return app.configPath
}

// SessionID returns the identifier attached to every log line.
func (app *Application) SessionID() string {
	return app.sessionID
}

// Editor returns the editor loop.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// onConfigChange applies the reloaded log level and forwards the reloaded
// key bindings into the loop.
func (app *Application) onConfigChange(cfg *config.Config) {
	app.logger.SetLevel(logging.ParseLevel(cfg.Log.Level))

	km, err := editor.NewKeymap(cfg.Editor.Quit, cfg.Editor.Diagnostic)
	if err != nil {
		app.logger.Warn("config reload rejected: %v", err)
		return
	}
	if err := app.session.PostEvent(terminal.InterruptEvent(km)); err != nil {
		app.logger.Warn("config reload dropped: %v", err)
		return
	}
	app.logger.Debug("config reloaded from %s", app.configPath)
}
