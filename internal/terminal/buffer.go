package terminal

import (
	"strings"

	"github.com/rivo/uniseg"
)

// ScreenBuffer provides double-buffered rendering with change tracking.
// It maintains two buffers: front (displayed) and back (drawing).
// On sync, it computes the diff and only updates changed cells.
type ScreenBuffer struct {
	width, height int
	front         [][]Cell
	back          [][]Cell
	dirty         [][]bool
	fullRedraw    bool
}

// NewScreenBuffer creates a screen buffer with the given dimensions.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{
		width:      max(width, 0),
		height:     max(height, 0),
		fullRedraw: true,
	}
	sb.allocate()
	return sb
}

// allocate creates the internal buffers.
func (sb *ScreenBuffer) allocate() {
	sb.front = make([][]Cell, sb.height)
	sb.back = make([][]Cell, sb.height)
	sb.dirty = make([][]bool, sb.height)

	for y := 0; y < sb.height; y++ {
		sb.front[y] = make([]Cell, sb.width)
		sb.back[y] = make([]Cell, sb.width)
		sb.dirty[y] = make([]bool, sb.width)

		for x := 0; x < sb.width; x++ {
			sb.front[y][x] = EmptyCell()
			sb.back[y][x] = EmptyCell()
		}
	}
}

// Resize resizes the buffer, preserving content where possible.
func (sb *ScreenBuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == sb.width && height == sb.height {
		return
	}

	oldBack := sb.back
	oldWidth := sb.width
	oldHeight := sb.height

	sb.width = width
	sb.height = height
	sb.allocate()

	copyHeight := min(oldHeight, height)
	copyWidth := min(oldWidth, width)
	for y := 0; y < copyHeight; y++ {
		copy(sb.back[y][:copyWidth], oldBack[y][:copyWidth])
	}

	sb.fullRedraw = true
}

// Size returns the buffer dimensions.
func (sb *ScreenBuffer) Size() Size {
	return Size{Width: sb.width, Height: sb.height}
}

func (sb *ScreenBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < sb.width && y >= 0 && y < sb.height
}

// SetCell sets a cell in the back buffer.
func (sb *ScreenBuffer) SetCell(x, y int, cell Cell) {
	if !sb.inBounds(x, y) {
		return
	}
	sb.back[y][x] = cell
	sb.dirty[y][x] = true
}

// GetCell returns a cell from the back buffer.
func (sb *ScreenBuffer) GetCell(x, y int) Cell {
	if !sb.inBounds(x, y) {
		return EmptyCell()
	}
	return sb.back[y][x]
}

// Clear clears the back buffer with empty cells.
func (sb *ScreenBuffer) Clear() {
	empty := EmptyCell()
	for y := 0; y < sb.height; y++ {
		for x := 0; x < sb.width; x++ {
			sb.back[y][x] = empty
			sb.dirty[y][x] = true
		}
	}
}

// Reset clears both buffers. Use it after the device itself was cleared,
// so the model and the display agree without emitting any cells.
func (sb *ScreenBuffer) Reset() {
	sb.Clear()
	sb.Sync()
}

// SetString writes s starting at the position and returns the column the
// next character goes to. Wide characters occupy two cells. There is no
// wrapping: past the right edge each character lands in the last column,
// as on a terminal with autowrap off.
func (sb *ScreenBuffer) SetString(x, y int, s string) int {
	col := x
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		width = max(min(width, 2), 1)
		col = sb.clampCol(col)

		sb.SetCell(col, y, Cell{Rune: []rune(cluster)[0], Width: width})
		if width == 2 {
			sb.SetCell(col+1, y, ContinuationCell())
		}
		col += width
	}
	return sb.clampCol(col)
}

// clampCol keeps col on the last column. An unsized buffer does not clamp.
func (sb *ScreenBuffer) clampCol(col int) int {
	if sb.width > 0 {
		return min(col, sb.width-1)
	}
	return col
}

// Row returns the back buffer contents of row y as a string, with
// continuation cells skipped.
func (sb *ScreenBuffer) Row(y int) string {
	if y < 0 || y >= sb.height {
		return ""
	}
	var b strings.Builder
	for _, c := range sb.back[y] {
		if c.IsContinuation() {
			continue
		}
		b.WriteRune(c.Rune)
	}
	return b.String()
}

// DiffChange represents a cell change for synchronization.
type DiffChange struct {
	X, Y int
	Cell Cell
}

// ComputeDiff returns the changes needed to update the display.
// Returns nil if no changes are needed.
func (sb *ScreenBuffer) ComputeDiff() []DiffChange {
	var changes []DiffChange

	for y := 0; y < sb.height; y++ {
		for x := 0; x < sb.width; x++ {
			if sb.fullRedraw || sb.dirty[y][x] {
				if sb.fullRedraw || !sb.back[y][x].Equals(sb.front[y][x]) {
					changes = append(changes, DiffChange{
						X:    x,
						Y:    y,
						Cell: sb.back[y][x],
					})
				}
			}
		}
	}

	return changes
}

// Sync copies the back buffer to the front buffer and clears dirty flags.
// Call this after applying changes to the device.
func (sb *ScreenBuffer) Sync() {
	for y := 0; y < sb.height; y++ {
		copy(sb.front[y], sb.back[y])
		clear(sb.dirty[y])
	}
	sb.fullRedraw = false
}
