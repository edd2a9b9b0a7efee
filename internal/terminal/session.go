package terminal

import (
	"strings"
	"sync"

	"github.com/dshills/tilde/internal/logging"
)

// Defaults for SessionOptions.
const (
	DefaultFiller         = '~'
	DefaultSentinelColumn = 1
)

// SessionOptions configures a Session.
type SessionOptions struct {
	// Filler is the glyph painted by DrawFillerRows.
	Filler rune

	// SentinelColumn is where DrawFillerRows leaves the pen on row 0.
	SentinelColumn int

	// Logger receives fire-and-forget failures. Nil disables logging.
	Logger *logging.Logger
}

// DefaultSessionOptions returns the default session options.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Filler:         DefaultFiller,
		SentinelColumn: DefaultSentinelColumn,
	}
}

// Session owns the raw-mode lifecycle of a Device and the screen model
// output is composed in.
//
// Start acquires raw mode and Terminate releases it. Terminate releases the
// device exactly once per successful Start, so it is safe to defer it and
// also call it explicitly.
type Session struct {
	mu     sync.Mutex
	device Device
	buf    *ScreenBuffer
	pen    Position
	shown  Position
	mode   Mode
	opts   SessionOptions
	logger *logging.Logger
}

// NewSession creates a session over device. The device is not touched until
// Start.
func NewSession(device Device, opts SessionOptions) *Session {
	if opts.Filler == 0 {
		opts.Filler = DefaultFiller
	}
	if opts.SentinelColumn < 0 {
		opts.SentinelColumn = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Null
	}
	return &Session{
		device: device,
		buf:    NewScreenBuffer(0, 0),
		opts:   opts,
		logger: logger.WithComponent("session"),
	}
}

// Start enables raw mode and clears the screen.
//
// A raw-mode failure is returned as *ModeError. If clearing fails, raw mode
// is released again and a *DeviceError is returned.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeRaw {
		return ErrAlreadyStarted
	}

	if err := s.device.Init(); err != nil {
		return &ModeError{Op: "enable raw mode", Err: err}
	}
	s.mode = ModeRaw
	s.logger.Debug("raw mode enabled")

	if size, err := s.device.Size(); err == nil {
		s.buf.Resize(size.Width, size.Height)
	} else {
		s.logger.Warn("initial size query failed: %v", err)
	}

	if err := s.clearLocked(); err != nil {
		if ferr := s.releaseLocked(); ferr != nil {
			s.logger.Error("release after failed start: %v", ferr)
		}
		return err
	}
	return nil
}

// Terminate disables raw mode. It is a no-op returning nil unless the
// session is in raw mode. The session leaves raw mode even when the device
// reports an error, which is returned as *ModeError.
func (s *Session) Terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeRaw {
		return nil
	}
	return s.releaseLocked()
}

func (s *Session) releaseLocked() error {
	s.mode = ModeNormal
	if err := s.device.Fini(); err != nil {
		return &ModeError{Op: "disable raw mode", Err: err}
	}
	s.logger.Debug("raw mode disabled")
	return nil
}

// Mode returns the current session mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ClearScreen erases the screen on the device and in the model, and moves
// the pen to the origin.
func (s *Session) ClearScreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Session) clearLocked() error {
	s.pen = Origin
	if err := s.device.Clear(); err != nil {
		return &DeviceError{Op: "clear screen", Err: err}
	}
	s.buf.Reset()
	s.shown = Origin
	return nil
}

// QuerySize returns the current terminal geometry. On failure it returns
// the zero Size and a *QueryError; callers treat the zero Size as unknown.
func (s *Session) QuerySize() (Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.querySizeLocked()
}

func (s *Session) querySizeLocked() (Size, error) {
	size, err := s.device.Size()
	if err != nil {
		return Size{}, &QueryError{Query: "size", Err: err}
	}
	if size.Known() {
		s.buf.Resize(size.Width, size.Height)
		s.pen = s.pen.Clamp(size)
	}
	return size, nil
}

// QueryCursorPosition flushes pending output and asks the device where its
// cursor is. The pen follows the answer. On failure the pen is unchanged and
// a *QueryError is returned.
func (s *Session) QueryCursorPosition() (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		s.logger.Warn("flush before cursor query failed: %v", err)
	}

	pos, err := s.device.CursorPosition()
	if err != nil {
		return Position{}, &QueryError{Query: "cursor position", Err: err}
	}
	pos = pos.Clamp(s.buf.Size())
	s.pen = pos
	s.shown = pos
	return pos, nil
}

// Pen returns where the next printed character will land.
func (s *Session) Pen() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pen
}

// MoveCursorTo moves the pen. Coordinates are clamped to the screen.
func (s *Session) MoveCursorTo(col, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pen = Position{Col: col, Row: row}.Clamp(s.buf.Size())
}

// MoveCursorRelative moves the pen n cells in dir, stopping at the screen
// margins.
func (s *Session) MoveCursorRelative(dir Direction, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pen = s.pen.Move(dir, n).Clamp(s.buf.Size())
}

// Print writes text at the pen and advances it. There is no autowrap: at
// the right margin the pen stays on the last column. A carriage return
// moves the pen to column 0 and a newline moves it down one row.
func (s *Session) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printLocked(text)
}

func (s *Session) printLocked(text string) {
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			i = len(text)
		}
		if i > 0 {
			s.pen.Col = s.buf.SetString(s.pen.Col, s.pen.Row, text[:i])
		}
		if i == len(text) {
			return
		}
		if text[i] == '\r' {
			s.pen.Col = 0
		} else {
			s.pen = s.pen.Move(DirDown, 1).Clamp(s.buf.Size())
		}
		text = text[i+1:]
	}
}

// DrawFillerRows paints the filler glyph at column 0 of every row except
// row 0, moves the pen to the sentinel column of row 0 and flushes.
func (s *Session) DrawFillerRows() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size, err := s.querySizeLocked()
	if err != nil {
		s.logger.Warn("size unknown while drawing filler rows: %v", err)
	}

	filler := NewCell(s.opts.Filler)
	for row := 1; row < size.Height; row++ {
		s.buf.SetCell(0, row, filler)
	}
	s.pen = Position{Col: s.opts.SentinelColumn, Row: 0}.Clamp(size)

	return s.flushLocked()
}

// Flush emits the cells that changed since the last flush, places the
// device cursor at the pen and shows the result. Without pending changes
// it does not touch the device, so a cursor moved by someone else stays
// where they left it.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Session) flushLocked() error {
	changes := s.buf.ComputeDiff()
	if len(changes) == 0 && s.pen == s.shown {
		return nil
	}
	for _, ch := range changes {
		s.device.SetCell(ch.X, ch.Y, ch.Cell)
	}
	s.buf.Sync()
	s.device.ShowCursor(s.pen.Col, s.pen.Row)
	s.shown = s.pen
	if err := s.device.Show(); err != nil {
		return &DeviceError{Op: "flush", Err: err}
	}
	return nil
}

// CellAt returns the model's cell at a position.
func (s *Session) CellAt(col, row int) Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.GetCell(col, row)
}

// RowText returns the model's contents of a row.
func (s *Session) RowText(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Row(row)
}

// ReadEvent blocks until the device delivers an event. Resize events
// update the screen model before they are returned.
func (s *Session) ReadEvent() Event {
	ev := s.device.PollEvent()
	if ev.Type == EventResize {
		s.mu.Lock()
		s.buf.Resize(ev.Width, ev.Height)
		s.pen = s.pen.Clamp(Size{Width: ev.Width, Height: ev.Height})
		s.mu.Unlock()
	}
	return ev
}

// PostEvent injects an event for ReadEvent to return.
func (s *Session) PostEvent(ev Event) error {
	return s.device.PostEvent(ev)
}
