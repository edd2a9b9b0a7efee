package terminal

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/tilde/internal/input/key"
)

func startedSession(t *testing.T, width, height int) (*Session, *NullDevice) {
	t.Helper()
	dev := NewNullDevice(width, height)
	s := NewSession(dev, DefaultSessionOptions())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return s, dev
}

func TestSessionStart(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	if s.Mode() != ModeRaw {
		t.Errorf("Mode() = %v, want raw", s.Mode())
	}
	if !dev.Raw() {
		t.Error("device should be in raw mode")
	}
	if got := dev.Calls(OpClear); got != 1 {
		t.Errorf("Clear called %d times, want 1", got)
	}
	if got := s.Pen(); got != Origin {
		t.Errorf("Pen() = %v, want origin", got)
	}
}

func TestSessionStartTwice(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start error = %v, want ErrAlreadyStarted", err)
	}
	if got := dev.Calls(OpInit); got != 1 {
		t.Errorf("Init called %d times, want 1", got)
	}
}

func TestSessionStartModeFailure(t *testing.T) {
	dev := NewNullDevice(80, 24)
	cause := errors.New("not a tty")
	dev.Fail(OpInit, cause)

	s := NewSession(dev, DefaultSessionOptions())
	err := s.Start()

	var me *ModeError
	if !errors.As(err, &me) {
		t.Fatalf("Start error = %v, want *ModeError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("ModeError should wrap the device error")
	}
	if s.Mode() != ModeNormal {
		t.Error("failed Start should leave the session normal")
	}

	// Nothing was acquired, so nothing is released.
	if err := s.Terminate(); err != nil {
		t.Errorf("Terminate after failed Start = %v", err)
	}
	if got := dev.Calls(OpFini); got != 0 {
		t.Errorf("Fini called %d times, want 0", got)
	}
}

func TestSessionStartClearFailureReleases(t *testing.T) {
	dev := NewNullDevice(80, 24)
	dev.Fail(OpClear, errors.New("write failed"))

	s := NewSession(dev, DefaultSessionOptions())
	err := s.Start()

	var de *DeviceError
	if !errors.As(err, &de) {
		t.Fatalf("Start error = %v, want *DeviceError", err)
	}
	if dev.Raw() {
		t.Error("raw mode should be released after a failed clear")
	}
	if got := dev.Calls(OpFini); got != 1 {
		t.Errorf("Fini called %d times, want 1", got)
	}
	if s.Mode() != ModeNormal {
		t.Error("session should be normal after failed start")
	}
}

func TestSessionTerminateExactlyOnce(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	for i := 0; i < 3; i++ {
		if err := s.Terminate(); err != nil {
			t.Fatalf("Terminate #%d: %v", i+1, err)
		}
	}

	if got := dev.Calls(OpFini); got != 1 {
		t.Errorf("Fini called %d times, want 1", got)
	}
	if dev.Raw() || s.Mode() != ModeNormal {
		t.Error("session should be back in normal mode")
	}
}

func TestSessionTerminateFailure(t *testing.T) {
	s, dev := startedSession(t, 80, 24)
	dev.Fail(OpFini, errors.New("restore failed"))

	if err := s.Terminate(); !IsModeError(err) {
		t.Fatalf("Terminate error = %v, want *ModeError", err)
	}
	if s.Mode() != ModeNormal {
		t.Error("session leaves raw mode even when release fails")
	}
	if err := s.Terminate(); err != nil {
		t.Errorf("second Terminate = %v, want nil", err)
	}
	if got := dev.Calls(OpFini); got != 1 {
		t.Errorf("Fini called %d times, want 1", got)
	}
}

func TestSessionRestart(t *testing.T) {
	s, dev := startedSession(t, 80, 24)
	if err := s.Terminate(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if err := s.Terminate(); err != nil {
		t.Fatal(err)
	}
	if dev.Calls(OpInit) != 2 || dev.Calls(OpFini) != 2 {
		t.Errorf("Init/Fini = %d/%d, want 2/2", dev.Calls(OpInit), dev.Calls(OpFini))
	}
}

func TestSessionQuerySize(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	size, err := s.QuerySize()
	if err != nil {
		t.Fatalf("QuerySize: %v", err)
	}
	if size != (Size{Width: 80, Height: 24}) {
		t.Errorf("QuerySize = %v", size)
	}

	dev.Fail(OpSize, errors.New("ioctl failed"))
	size, err = s.QuerySize()
	if !IsQueryError(err) {
		t.Errorf("error = %v, want *QueryError", err)
	}
	if size != (Size{}) {
		t.Errorf("failed QuerySize = %v, want zero", size)
	}
}

func TestSessionQueryCursorPosition(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	s.MoveCursorTo(5, 3)
	pos, err := s.QueryCursorPosition()
	if err != nil {
		t.Fatalf("QueryCursorPosition: %v", err)
	}
	if pos != (Position{Col: 5, Row: 3}) {
		t.Errorf("pending move should be flushed before the query, got %v", pos)
	}

	// The device is authoritative.
	dev.SetCursor(Position{Col: 7, Row: 2})
	pos, err = s.QueryCursorPosition()
	if err != nil {
		t.Fatal(err)
	}
	if pos != (Position{Col: 7, Row: 2}) || s.Pen() != pos {
		t.Errorf("query = %v pen = %v, want (7, 2)", pos, s.Pen())
	}

	dev.Fail(OpCursor, errors.New("no reply"))
	if _, err := s.QueryCursorPosition(); !IsQueryError(err) {
		t.Errorf("error = %v, want *QueryError", err)
	}
	if s.Pen() != (Position{Col: 7, Row: 2}) {
		t.Errorf("failed query moved the pen to %v", s.Pen())
	}
}

func TestSessionMoveCursorClamps(t *testing.T) {
	s, _ := startedSession(t, 10, 5)

	s.MoveCursorTo(50, -4)
	if got := s.Pen(); got != (Position{Col: 9, Row: 0}) {
		t.Errorf("MoveCursorTo clamp = %v", got)
	}

	s.MoveCursorRelative(DirDown, 100)
	if got := s.Pen(); got != (Position{Col: 9, Row: 4}) {
		t.Errorf("MoveCursorRelative down = %v", got)
	}

	s.MoveCursorRelative(DirLeft, 3)
	if got := s.Pen(); got != (Position{Col: 6, Row: 4}) {
		t.Errorf("MoveCursorRelative left = %v", got)
	}
}

func TestSessionPrint(t *testing.T) {
	s, dev := startedSession(t, 10, 3)

	s.MoveCursorTo(2, 1)
	s.Print("hi")
	if got := s.Pen(); got != (Position{Col: 4, Row: 1}) {
		t.Errorf("pen after Print = %v", got)
	}

	s.Print("\r\nok")
	if got := s.Pen(); got != (Position{Col: 2, Row: 2}) {
		t.Errorf("pen after CRLF = %v", got)
	}

	// No autowrap: the last column is overwritten.
	s.MoveCursorTo(8, 0)
	s.Print("abcd")
	if got := s.Pen(); got != (Position{Col: 9, Row: 0}) {
		t.Errorf("pen at margin = %v", got)
	}

	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := dev.Row(0); got != "        ad" {
		t.Errorf("row 0 = %q", got)
	}
	if got := dev.Row(1); got != "  hi      " {
		t.Errorf("row 1 = %q", got)
	}
	if got := dev.Row(2); got != "ok        " {
		t.Errorf("row 2 = %q", got)
	}
}

func TestSessionDrawFillerRows(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	if err := s.DrawFillerRows(); err != nil {
		t.Fatalf("DrawFillerRows: %v", err)
	}

	if got := dev.CellAt(0, 0); got.Rune == '~' {
		t.Error("row 0 is reserved and must not get a filler glyph")
	}
	for row := 1; row < 24; row++ {
		if got := dev.CellAt(0, row); got.Rune != '~' {
			t.Fatalf("row %d col 0 = %q, want '~'", row, got.Rune)
		}
	}
	if got := dev.Cursor(); got != (Position{Col: 1, Row: 0}) {
		t.Errorf("device cursor = %v, want sentinel (1, 0)", got)
	}
	if got := s.Pen(); got != (Position{Col: 1, Row: 0}) {
		t.Errorf("pen = %v, want (1, 0)", got)
	}
}

func TestSessionDrawFillerRowsOptions(t *testing.T) {
	dev := NewNullDevice(20, 4)
	s := NewSession(dev, SessionOptions{Filler: '.', SentinelColumn: 3})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.DrawFillerRows(); err != nil {
		t.Fatal(err)
	}
	if got := dev.CellAt(0, 3).Rune; got != '.' {
		t.Errorf("filler = %q, want '.'", got)
	}
	if got := dev.Cursor(); got != (Position{Col: 3, Row: 0}) {
		t.Errorf("cursor = %v, want (3, 0)", got)
	}
}

func TestSessionDrawFillerRowsUnknownSize(t *testing.T) {
	s, dev := startedSession(t, 80, 24)
	dev.Fail(OpSize, errors.New("ioctl failed"))

	if err := s.DrawFillerRows(); err != nil {
		t.Fatalf("size failure should not fail DrawFillerRows: %v", err)
	}
	if got := dev.Calls(OpSetCell); got != 0 {
		t.Errorf("%d cells written with unknown size", got)
	}
}

func TestSessionFlushEmitsOnlyChanges(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	if err := s.DrawFillerRows(); err != nil {
		t.Fatal(err)
	}
	before := dev.Calls(OpSetCell)
	if before != 23 {
		t.Errorf("filler rows wrote %d cells, want 23", before)
	}

	s.Print("x")
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := dev.Calls(OpSetCell) - before; got != 1 {
		t.Errorf("flush wrote %d cells, want 1", got)
	}

	shows := dev.Calls(OpShow)
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := dev.Calls(OpShow); got != shows {
		t.Error("flush with nothing pending should not touch the device")
	}
}

func TestSessionFlushFailure(t *testing.T) {
	s, dev := startedSession(t, 80, 24)
	dev.Fail(OpShow, errors.New("EIO"))

	s.Print("x")
	err := s.Flush()
	var de *DeviceError
	if !errors.As(err, &de) || de.Op != "flush" {
		t.Errorf("Flush error = %v, want *DeviceError{flush}", err)
	}
}

func TestSessionClearScreen(t *testing.T) {
	s, dev := startedSession(t, 10, 3)
	s.Print("abc")
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearScreen(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(dev.Row(0)); got != "" {
		t.Errorf("row 0 after clear = %q", got)
	}
	if got := strings.TrimSpace(s.RowText(0)); got != "" {
		t.Errorf("model row 0 after clear = %q", got)
	}
	if s.Pen() != Origin {
		t.Errorf("pen after clear = %v", s.Pen())
	}
}

func TestSessionReadEvent(t *testing.T) {
	s, dev := startedSession(t, 80, 24)

	q := key.NewRuneEvent('q', key.ModCtrl)
	if err := s.PostEvent(KeyEvent(q)); err != nil {
		t.Fatal(err)
	}
	ev := s.ReadEvent()
	if ev.Type != EventKey || !ev.Key.Equals(q) {
		t.Errorf("ReadEvent = %v", ev)
	}

	dev.Resize(40, 10)
	ev = s.ReadEvent()
	if ev.Type != EventResize || ev.Width != 40 || ev.Height != 10 {
		t.Errorf("ReadEvent = %v, want resize 40x10", ev)
	}
	s.MoveCursorTo(100, 100)
	if got := s.Pen(); got != (Position{Col: 39, Row: 9}) {
		t.Errorf("pen after resize clamp = %v", got)
	}
}
