package terminal

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// Position is a cell coordinate. Col and Row are zero-based.
type Position struct {
	Col int
	Row int
}

// Origin is the top-left cell.
var Origin = Position{}

// String returns "(col, row)".
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Col, p.Row)
}

// Move returns p moved n cells in the given direction, never below zero.
func (p Position) Move(dir Direction, n int) Position {
	switch dir {
	case DirUp:
		p.Row -= n
	case DirDown:
		p.Row += n
	case DirLeft:
		p.Col -= n
	case DirRight:
		p.Col += n
	}
	return p.Clamp(Size{})
}

// Clamp limits p to the grid described by size. Negative coordinates
// become zero. The upper bound is only applied to a known dimension.
func (p Position) Clamp(size Size) Position {
	p.Col = clampAxis(p.Col, size.Width)
	p.Row = clampAxis(p.Row, size.Height)
	return p
}

func clampAxis(v, limit int) int {
	if limit > 0 && v > limit-1 {
		v = limit - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Size is the terminal geometry in cells. The zero Size means unknown.
type Size struct {
	Width  int
	Height int
}

// Known reports whether both dimensions are positive.
func (s Size) Known() bool {
	return s.Width > 0 && s.Height > 0
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Mode is the input mode of the terminal.
type Mode int

const (
	// ModeNormal is line-buffered, echoing input.
	ModeNormal Mode = iota
	// ModeRaw delivers each keystroke immediately without echo.
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeRaw:
		return "raw"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Direction is a relative cursor movement direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Cell is a single character cell.
type Cell struct {
	// Rune is the character. Zero marks the right half of a wide character.
	Rune rune

	// Width is the display width: 1 for most characters, 2 for wide
	// characters and 0 for continuation cells.
	Width int
}

// EmptyCell returns a blank cell.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// ContinuationCell returns the placeholder that follows a wide character.
func ContinuationCell() Cell {
	return Cell{Rune: 0, Width: 0}
}

// NewCell creates a cell for r with its display width.
func NewCell(r rune) Cell {
	return Cell{Rune: r, Width: RuneWidth(r)}
}

// IsContinuation reports whether c is the right half of a wide character.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// Equals reports whether two cells render identically.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Width == other.Width
}

// RuneWidth returns the display width of r. Control characters and
// zero-width runes report 1 so every printed rune occupies a cell.
func RuneWidth(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 1
	}
	w := uniseg.StringWidth(string(r))
	if w < 1 {
		return 1
	}
	if w > 2 {
		return 2
	}
	return w
}
