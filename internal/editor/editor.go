package editor

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/dshills/tilde/internal/input/key"
	"github.com/dshills/tilde/internal/logging"
	"github.com/dshills/tilde/internal/terminal"
)

// Defaults for Options.
const (
	DefaultGoodbye    = "Goodbye."
	DefaultLineMarker = '~'
)

// Options configures an Editor.
type Options struct {
	// Keymap holds the quit and diagnostic chords. Nil uses DefaultKeymap.
	Keymap *Keymap

	// Goodbye is printed on the cleared screen when the editor quits.
	Goodbye string

	// LineMarker is drawn at column 0 of the row Enter opens.
	LineMarker rune

	// DiagnosticColumn is where the diagnostic line starts on row 0.
	DiagnosticColumn int

	// Logger is the error channel. Nil disables logging.
	Logger *logging.Logger
}

// DefaultOptions returns the default editor options.
func DefaultOptions() Options {
	return Options{
		Keymap:           DefaultKeymap(),
		Goodbye:          DefaultGoodbye,
		LineMarker:       DefaultLineMarker,
		DiagnosticColumn: terminal.DefaultSentinelColumn,
	}
}

// Editor is the read-evaluate-render loop over a terminal session.
//
// The run state and the tracked cursor are owned by the goroutine calling
// Run. Other goroutines talk to the loop only by posting events to the
// session.
type Editor struct {
	session *terminal.Session
	keymap  *Keymap
	opts    Options
	logger  *logging.Logger

	state  RunState
	cursor terminal.Position

	// width of the last diagnostic line, so a shorter one erases it
	diagWidth int
}

// New creates an editor driving session.
func New(session *terminal.Session, opts Options) *Editor {
	if opts.Keymap == nil {
		opts.Keymap = DefaultKeymap()
	}
	if opts.LineMarker == 0 {
		opts.LineMarker = DefaultLineMarker
	}
	if opts.DiagnosticColumn < 0 {
		opts.DiagnosticColumn = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Null
	}
	return &Editor{
		session: session,
		keymap:  opts.Keymap,
		opts:    opts,
		logger:  logger.WithComponent("editor"),
	}
}

// State returns the run state.
func (e *Editor) State() RunState {
	return e.state
}

// Cursor returns the tracked cursor position.
func (e *Editor) Cursor() terminal.Position {
	return e.cursor
}

// Keymap returns the active keymap.
func (e *Editor) Keymap() *Keymap {
	return e.keymap
}

// Run starts the session, draws the filler rows and runs the loop until a
// quit request or a fatal error. The session is terminated before Run
// returns on every path. A panic in the loop is returned as
// *RecoveredPanicError. A failure to leave raw mode is returned only when
// the loop itself succeeded; otherwise it is logged and the loop's error
// wins.
func (e *Editor) Run() (err error) {
	if err := e.session.Start(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
		}
		if terr := e.session.Terminate(); terr != nil {
			if err != nil {
				e.logger.Error("leaving raw mode: %v", terr)
				return
			}
			err = terr
		}
	}()

	if err := e.session.DrawFillerRows(); err != nil {
		return err
	}
	e.cursor = e.session.Pen()

	return e.repl()
}

// repl runs iterations until the state is Quitting.
func (e *Editor) repl() error {
	for e.state == Running {
		ev := e.session.ReadEvent()
		if err := e.evaluate(ev); err != nil {
			return err
		}
		if err := e.render(); err != nil {
			return err
		}
		if err := e.session.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// evaluate interprets one event. Only key presses change editor state;
// interrupts carry requests from other goroutines.
func (e *Editor) evaluate(ev terminal.Event) error {
	switch ev.Type {
	case terminal.EventKey:
		e.handleKey(ev.Key)
	case terminal.EventInterrupt:
		e.handleInterrupt(ev.Data)
	case terminal.EventResize:
		e.logger.Debug("terminal resized to %dx%d", ev.Width, ev.Height)
	case terminal.EventError:
		return fmt.Errorf("reading input: %w", ev.Err)
	case terminal.EventClosed:
		return ErrInputClosed
	}
	return nil
}

func (e *Editor) handleInterrupt(data any) {
	switch v := data.(type) {
	case *Keymap:
		if err := v.Validate(); err != nil {
			e.logger.Warn("ignoring keymap: %v", err)
			return
		}
		e.keymap = v
		e.logger.Info("keymap reloaded: %s", v)
	case Action:
		e.perform(v)
	default:
		e.logger.Debug("ignoring interrupt %v", data)
	}
}

func (e *Editor) handleKey(ev key.Event) {
	e.syncCursor()

	if action := e.keymap.Lookup(ev); action != ActionNone {
		e.perform(action)
		return
	}

	switch ev.Key {
	case key.KeyUp:
		e.move(terminal.DirUp)
	case key.KeyDown:
		e.move(terminal.DirDown)
	case key.KeyLeft:
		e.move(terminal.DirLeft)
	case key.KeyRight:
		e.move(terminal.DirRight)
	case key.KeyBackspace:
		e.backspace()
	case key.KeyEnter:
		e.newline()
	}
}

func (e *Editor) perform(action Action) {
	switch action {
	case ActionQuit:
		e.state = Quitting
		e.logger.Debug("quit requested")
	case ActionDiagnostic:
		e.diagnostic()
	}
}

// syncCursor refreshes the tracked cursor from the device. On failure the
// last known position is kept.
func (e *Editor) syncCursor() {
	pos, err := e.session.QueryCursorPosition()
	if err != nil {
		e.logger.Warn("cursor query failed: %v", err)
		return
	}
	e.cursor = pos
}

// size returns the current terminal size, or the zero Size when unknown.
func (e *Editor) size() terminal.Size {
	size, err := e.session.QuerySize()
	if err != nil {
		e.logger.Warn("size query failed: %v", err)
		return terminal.Size{}
	}
	return size
}

func (e *Editor) moveTo(pos terminal.Position) {
	e.cursor = pos
	e.session.MoveCursorTo(pos.Col, pos.Row)
}

func (e *Editor) move(dir terminal.Direction) {
	e.moveTo(e.cursor.Move(dir, 1).Clamp(e.size()))
}

// backspace blanks the cell under the cursor and steps back over it. The
// blank advances the cursor, so stepping back two cells lands one before
// the erased cell. Reaching column 0 continues on the row above.
func (e *Editor) backspace() {
	e.session.MoveCursorTo(e.cursor.Col, e.cursor.Row)
	e.session.Print(" ")
	e.session.MoveCursorRelative(terminal.DirLeft, 2)
	e.cursor = e.session.Pen()
	e.syncCursor()

	if e.cursor.Col == 0 {
		e.moveTo(e.cursor.Move(terminal.DirUp, 1))
	}
}

// newline opens a marked line below the cursor.
func (e *Editor) newline() {
	size := e.size()
	e.moveTo(terminal.Position{Col: 0, Row: e.cursor.Row + 1}.Clamp(size))
	e.session.Print(string(e.opts.LineMarker))
	e.moveTo(e.cursor.Move(terminal.DirRight, 1).Clamp(size))
}

// diagnostic writes the cursor and size on row 0 and puts the cursor back.
func (e *Editor) diagnostic() {
	line := fmt.Sprintf("cursor %s  size %s", e.cursor, e.size())
	width := len(line)
	if pad := e.diagWidth - width; pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	e.diagWidth = width

	e.session.MoveCursorTo(e.opts.DiagnosticColumn, 0)
	e.session.Print(line)
	e.session.MoveCursorTo(e.cursor.Col, e.cursor.Row)
}

// render paints the closing screen once the editor is quitting. While
// running, evaluation has already written everything.
func (e *Editor) render() error {
	if e.state != Quitting {
		return nil
	}
	if err := e.session.ClearScreen(); err != nil {
		return err
	}
	e.session.Print(e.opts.Goodbye + "\r\n")
	return nil
}
