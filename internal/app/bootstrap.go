package app

import (
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/dshills/tilde/internal/config"
	"github.com/dshills/tilde/internal/editor"
	"github.com/dshills/tilde/internal/logging"
	"github.com/dshills/tilde/internal/terminal"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app  *Application
	opts Options
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{app: app, opts: opts}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogger,
		b.initDevice,
		b.initEditor,
		b.initWatcher,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

// initConfig loads the configuration file, falling back to defaults when
// there is none.
func (b *bootstrapper) initConfig() error {
	path := b.opts.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			b.app.config = config.Default()
			return nil
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.app.config = cfg
	b.app.configPath = path
	return nil
}

// initLogger builds the error channel and tags it with a session id.
func (b *bootstrapper) initLogger() error {
	cfg := b.app.config.Log

	var out io.Writer
	switch {
	case b.opts.LogOutput != nil:
		b.app.logHold = logging.NewHeldWriter(b.opts.LogOutput, 0)
		out = b.app.logHold
	case cfg.File != "":
		f, err := logging.OpenFile(cfg.File)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		b.app.logFile = f
		out = f
	default:
		// stderr is the editor's terminal; hold it while in raw mode.
		b.app.logHold = logging.NewHeldWriter(os.Stderr, 0)
		out = b.app.logHold
	}

	b.app.sessionID = uuid.NewString()
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		Output: out,
		Prefix: "tilde",
	}).WithField("session", b.app.sessionID)

	logging.SetDefault(logger)
	b.app.logger = logger
	return nil
}

// initDevice opens the terminal device.
func (b *bootstrapper) initDevice() error {
	if b.opts.Device != nil {
		b.app.device = b.opts.Device
		return nil
	}

	tc := b.app.config.Terminal
	dev, err := terminal.Open(tc.Device, terminal.DeviceOptions{
		CursorReportTimeout: tc.CursorReportTimeout.Duration,
	})
	if err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	b.app.device = dev
	return nil
}

// initEditor creates the session and the editor loop on top of it.
func (b *bootstrapper) initEditor() error {
	ec := b.app.config.Editor

	km, err := editor.NewKeymap(ec.Quit, ec.Diagnostic)
	if err != nil {
		return &InitError{Component: "keymap", Err: err}
	}

	filler := b.app.config.FillerRune()
	b.app.session = terminal.NewSession(b.app.device, terminal.SessionOptions{
		Filler:         filler,
		SentinelColumn: ec.SentinelColumn,
		Logger:         b.app.logger,
	})
	b.app.editor = editor.New(b.app.session, editor.Options{
		Keymap:           km,
		Goodbye:          ec.Goodbye,
		LineMarker:       filler,
		DiagnosticColumn: ec.SentinelColumn,
		Logger:           b.app.logger,
	})
	return nil
}

// initWatcher starts watching the configuration file. Watching is a
// convenience, so failures are logged and startup continues.
func (b *bootstrapper) initWatcher() error {
	if b.opts.DisableWatch || b.app.configPath == "" {
		return nil
	}

	logger := b.app.logger.WithComponent("config")
	w, err := config.NewWatcher(b.app.configPath, b.app.onConfigChange,
		config.WithErrorHandler(func(err error) {
			logger.Warn("config reload failed: %v", err)
		}))
	if err != nil {
		logger.Debug("not watching config: %v", err)
		return nil
	}
	b.app.watcher = w
	return nil
}

// cleanup releases what was initialized before a failure.
func (b *bootstrapper) cleanup() {
	if b.app.watcher != nil {
		_ = b.app.watcher.Close()
		b.app.watcher = nil
	}
	if b.app.logFile != nil {
		_ = b.app.logFile.Close()
		b.app.logFile = nil
	}
}
