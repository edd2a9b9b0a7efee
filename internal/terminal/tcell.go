package terminal

import (
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tilde/internal/input/key"
)

// TcellDevice implements Device on a tcell screen.
//
// tcell has no cursor position request, so CursorPosition reports the
// cursor last placed with ShowCursor, which is where tcell puts the
// terminal cursor on Show.
type TcellDevice struct {
	screen tcell.Screen
	cursor Position
	mu     sync.Mutex
}

// NewTcellDevice creates a device on the process terminal.
func NewTcellDevice() (*TcellDevice, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &TcellDevice{screen: screen}, nil
}

// NewTcellDeviceWithScreen creates a device on an existing screen, such as
// a tcell.SimulationScreen.
func NewTcellDeviceWithScreen(screen tcell.Screen) *TcellDevice {
	return &TcellDevice{screen: screen}
}

func (t *TcellDevice) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Init()
}

func (t *TcellDevice) Fini() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
	return nil
}

func (t *TcellDevice) Size() (Size, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	if w <= 0 || h <= 0 {
		return Size{}, errors.New("tcell screen reports no size")
	}
	return Size{Width: w, Height: h}, nil
}

func (t *TcellDevice) CursorPosition() (Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cursor, nil
}

func (t *TcellDevice) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	t.cursor = Origin
	return nil
}

func (t *TcellDevice) SetCell(col, row int, cell Cell) {
	if cell.IsContinuation() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(col, row, cell.Rune, nil, tcell.StyleDefault)
}

func (t *TcellDevice) ShowCursor(col, row int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor = Position{Col: col, Row: row}
	t.screen.ShowCursor(col, row)
}

func (t *TcellDevice) Show() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
	return nil
}

func (t *TcellDevice) PollEvent() Event {
	ev := t.screen.PollEvent()
	if ev == nil {
		return Event{Type: EventClosed}
	}
	return convertEvent(ev)
}

func (t *TcellDevice) PostEvent(ev Event) error {
	var tev tcell.Event
	switch ev.Type {
	case EventKey:
		k, r, mod := convertToTcellKey(ev.Key)
		tev = tcell.NewEventKey(k, r, mod)
	case EventResize:
		tev = tcell.NewEventResize(ev.Width, ev.Height)
	default:
		tev = tcell.NewEventInterrupt(ev)
	}
	if err := t.screen.PostEvent(tev); err != nil {
		return ErrEventQueueFull
	}
	return nil
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return KeyEvent(convertKey(e))

	case *tcell.EventResize:
		w, h := e.Size()
		return ResizeEvent(w, h)

	case *tcell.EventInterrupt:
		// Events posted with PostEvent travel wrapped in an interrupt.
		if inner, ok := e.Data().(Event); ok {
			return inner
		}
		return InterruptEvent(e.Data())

	case *tcell.EventError:
		return Event{Type: EventError, Err: e}

	default:
		return Event{Type: EventNone}
	}
}

var tcellSpecialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
}

// convertKey converts a tcell key event. Backspace, Tab and Enter share
// their codes with KeyCtrlH, KeyCtrlI and KeyCtrlM, so named keys are
// matched first. Remaining control chords arrive as KeyCtrlA..KeyCtrlZ and
// become the matching lowercase rune with Ctrl.
func convertKey(e *tcell.EventKey) key.Event {
	mods := convertMod(e.Modifiers())
	k := e.Key()

	if special, ok := tcellSpecialKeys[k]; ok {
		return key.NewSpecialEvent(special, mods)
	}

	switch {
	case k == tcell.KeyRune:
		return key.NewRuneEvent(e.Rune(), mods).Canonical()
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return key.NewRuneEvent(rune('a'+(k-tcell.KeyCtrlA)), mods.With(key.ModCtrl)).Canonical()
	case k == tcell.KeyCtrlSpace:
		return key.NewRuneEvent(' ', mods.With(key.ModCtrl))
	}
	return key.NewSpecialEvent(key.KeyNone, mods)
}

// convertToTcellKey converts a key event to tcell's key, rune and mask.
func convertToTcellKey(e key.Event) (tcell.Key, rune, tcell.ModMask) {
	mod := convertToTcellMod(e.Modifiers)
	if e.Key == key.KeyRune {
		// NewEventKey turns Ctrl with a letter into KeyCtrlA..KeyCtrlZ.
		return tcell.KeyRune, e.Rune, mod
	}
	for tk, k := range tcellSpecialKeys {
		if k == e.Key {
			return tk, 0, mod
		}
	}
	return tcell.KeyRune, 0, mod
}

// convertMod converts tcell modifier mask to our Modifier.
func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= key.ModMeta
	}
	return result
}

// convertToTcellMod converts our Modifier to tcell.ModMask.
func convertToTcellMod(m key.Modifier) tcell.ModMask {
	var result tcell.ModMask
	if m.Has(key.ModShift) {
		result |= tcell.ModShift
	}
	if m.Has(key.ModCtrl) {
		result |= tcell.ModCtrl
	}
	if m.Has(key.ModAlt) {
		result |= tcell.ModAlt
	}
	if m.Has(key.ModMeta) {
		result |= tcell.ModMeta
	}
	return result
}
