package terminal

import (
	"strings"
	"sync"
)

// DeviceOp names a NullDevice operation for failure injection and call
// counting.
type DeviceOp string

const (
	OpInit   DeviceOp = "init"
	OpFini   DeviceOp = "fini"
	OpSize   DeviceOp = "size"
	OpCursor DeviceOp = "cursor"
	OpClear  DeviceOp = "clear"
	OpShow   DeviceOp = "show"

	// OpSetCell is counted but cannot fail.
	OpSetCell DeviceOp = "set cell"
)

// NullDevice is an in-memory device for tests. It keeps its own grid and
// cursor, counts calls and can be told to fail individual operations.
type NullDevice struct {
	mu     sync.Mutex
	size   Size
	cells  [][]Cell
	cursor Position
	raw    bool
	events chan Event
	fail   map[DeviceOp]error
	calls  map[DeviceOp]int
}

// NewNullDevice creates a null device with the given dimensions.
func NewNullDevice(width, height int) *NullDevice {
	d := &NullDevice{
		size:   Size{Width: width, Height: height},
		events: make(chan Event, 100),
		fail:   make(map[DeviceOp]error),
		calls:  make(map[DeviceOp]int),
	}
	d.allocate()
	return d
}

func (d *NullDevice) allocate() {
	d.cells = make([][]Cell, max(d.size.Height, 0))
	for i := range d.cells {
		d.cells[i] = make([]Cell, max(d.size.Width, 0))
		for j := range d.cells[i] {
			d.cells[i][j] = EmptyCell()
		}
	}
}

// Fail makes op return err until cleared with a nil err.
func (d *NullDevice) Fail(op DeviceOp, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, op)
		return
	}
	d.fail[op] = err
}

// Calls returns how many times op was invoked.
func (d *NullDevice) Calls(op DeviceOp) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

// begin counts op and returns its injected failure, if any.
// Callers hold d.mu.
func (d *NullDevice) begin(op DeviceOp) error {
	d.calls[op]++
	return d.fail[op]
}

func (d *NullDevice) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin(OpInit); err != nil {
		return err
	}
	d.raw = true
	return nil
}

func (d *NullDevice) Fini() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.begin(OpFini)
	d.raw = false
	return err
}

// Raw reports whether the device is in raw mode.
func (d *NullDevice) Raw() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

func (d *NullDevice) Size() (Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin(OpSize); err != nil {
		return Size{}, err
	}
	return d.size, nil
}

func (d *NullDevice) CursorPosition() (Position, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin(OpCursor); err != nil {
		return Position{}, err
	}
	return d.cursor, nil
}

func (d *NullDevice) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin(OpClear); err != nil {
		return err
	}
	d.allocate()
	d.cursor = Origin
	return nil
}

func (d *NullDevice) SetCell(col, row int, cell Cell) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[OpSetCell]++
	if row >= 0 && row < len(d.cells) && col >= 0 && col < len(d.cells[row]) {
		d.cells[row][col] = cell
	}
}

func (d *NullDevice) ShowCursor(col, row int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = Position{Col: col, Row: row}
}

func (d *NullDevice) Show() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.begin(OpShow)
}

func (d *NullDevice) PollEvent() Event {
	return <-d.events
}

func (d *NullDevice) PostEvent(ev Event) error {
	select {
	case d.events <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Cursor returns the device cursor.
func (d *NullDevice) Cursor() Position {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// SetCursor moves the device cursor behind the session's back, the way
// another writer to the terminal would.
func (d *NullDevice) SetCursor(pos Position) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = pos
}

// CellAt returns the displayed cell at a position.
func (d *NullDevice) CellAt(col, row int) Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row >= 0 && row < len(d.cells) && col >= 0 && col < len(d.cells[row]) {
		return d.cells[row][col]
	}
	return EmptyCell()
}

// Row returns the displayed contents of a row.
func (d *NullDevice) Row(row int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row < 0 || row >= len(d.cells) {
		return ""
	}
	var b strings.Builder
	for _, c := range d.cells[row] {
		if c.IsContinuation() {
			continue
		}
		b.WriteRune(c.Rune)
	}
	return b.String()
}

// Resize changes the device geometry and queues a resize event.
func (d *NullDevice) Resize(width, height int) {
	d.mu.Lock()
	d.size = Size{Width: width, Height: height}
	d.allocate()
	d.mu.Unlock()
	_ = d.PostEvent(ResizeEvent(width, height))
}
