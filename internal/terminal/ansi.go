package terminal

import (
	"strconv"
	"unicode/utf8"

	"github.com/dshills/tilde/internal/input/key"
)

// Control sequences written by the ANSI device.
const (
	seqClearScreen   = "\x1b[2J"
	seqCursorHome    = "\x1b[H"
	seqShowCursor    = "\x1b[?25h"
	seqResetAttrs    = "\x1b[0m"
	seqRequestCursor = "\x1b[6n"

	// DECAWM off keeps the cursor at the right margin instead of wrapping,
	// which is how the screen model treats printed text.
	seqAutoWrapOff = "\x1b[?7l"
	seqAutoWrapOn  = "\x1b[?7h"
)

// appendCursorPos appends a CUP sequence for the zero-based position.
func appendCursorPos(dst []byte, col, row int) []byte {
	dst = append(dst, "\x1b["...)
	dst = strconv.AppendInt(dst, int64(row+1), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(col+1), 10)
	return append(dst, 'H')
}

// maxCSILen bounds how far a CSI sequence is scanned for its final byte.
const maxCSILen = 32

// inputToken is one decoded unit of terminal input: a key press or a
// cursor position report.
type inputToken struct {
	key      key.Event
	report   Position
	isReport bool
}

func keyToken(e key.Event) inputToken {
	return inputToken{key: e}
}

// inputDecoder turns raw tty bytes into tokens. Incomplete sequences are
// kept until more bytes arrive.
type inputDecoder struct {
	buf []byte
}

// feed appends data and returns every complete token.
func (d *inputDecoder) feed(data []byte) []inputToken {
	d.buf = append(d.buf, data...)

	var out []inputToken
	i := 0
	for i < len(d.buf) {
		n, tok, ok := decodeOne(d.buf[i:])
		if n == 0 {
			break
		}
		if ok {
			out = append(out, tok)
		}
		i += n
	}

	d.buf = append(d.buf[:0], d.buf[i:]...)
	return out
}

// flushPending resolves input that stopped arriving mid-sequence. A lone
// ESC is the Escape key; any other partial sequence is dropped.
func (d *inputDecoder) flushPending() []inputToken {
	if len(d.buf) == 0 {
		return nil
	}
	var out []inputToken
	if len(d.buf) == 1 && d.buf[0] == 0x1b {
		out = append(out, keyToken(key.NewSpecialEvent(key.KeyEscape, key.ModNone)))
	}
	d.buf = d.buf[:0]
	return out
}

// decodeOne decodes the token at the start of data. It returns the bytes
// consumed (0 when more input is needed) and whether a token was produced.
func decodeOne(data []byte) (int, inputToken, bool) {
	b := data[0]

	switch {
	case b >= 0x20 && b < 0x7f:
		return 1, keyToken(key.NewRuneEvent(rune(b), key.ModNone)), true
	case b == 0x1b:
		return decodeEscape(data)
	case b == 0x7f:
		return 1, keyToken(key.NewSpecialEvent(key.KeyBackspace, key.ModNone)), true
	case b < 0x20:
		return 1, keyToken(controlKey(b)), true
	}

	if !utf8.FullRune(data) {
		return 0, inputToken{}, false
	}
	r, size := utf8.DecodeRune(data)
	if r == utf8.RuneError {
		return size, inputToken{}, false
	}
	return size, keyToken(key.NewRuneEvent(r, key.ModNone)), true
}

// controlKey maps a C0 control byte to its Ctrl chord. Bytes shared with
// a named key, such as 0x0d for Enter, become that key.
func controlKey(b byte) key.Event {
	if b == 0x00 {
		return key.NewRuneEvent(' ', key.ModCtrl)
	}
	return key.NewRuneEvent(rune('@'+b), key.ModCtrl).Canonical()
}

func decodeEscape(data []byte) (int, inputToken, bool) {
	if len(data) < 2 {
		return 0, inputToken{}, false
	}

	switch next := data[1]; {
	case next == '[':
		return decodeCSI(data)
	case next == 'O':
		return decodeSS3(data)
	case next == 0x1b:
		return 2, keyToken(key.NewSpecialEvent(key.KeyEscape, key.ModAlt)), true
	case next < 0x20:
		e := controlKey(next)
		e.Modifiers = e.Modifiers.With(key.ModAlt)
		return 2, keyToken(e), true
	case next < 0x7f:
		return 2, keyToken(key.NewRuneEvent(rune(next), key.ModAlt)), true
	}

	// ESC followed by a byte that starts nothing we know: report Escape
	// and decode the rest on its own.
	return 1, keyToken(key.NewSpecialEvent(key.KeyEscape, key.ModNone)), true
}

// decodeCSI decodes ESC [ params final.
func decodeCSI(data []byte) (int, inputToken, bool) {
	end := 2
	for ; end < len(data) && end < maxCSILen; end++ {
		c := data[end]
		if c >= 0x40 && c <= 0x7e {
			break
		}
		if c < 0x20 || c > 0x3f {
			// Not a CSI body byte; treat what we have as garbage.
			return end, inputToken{}, false
		}
	}
	if end >= maxCSILen {
		return end, inputToken{}, false
	}
	if end >= len(data) {
		return 0, inputToken{}, false
	}

	final := data[end]
	params := parseParams(data[2:end])
	n := end + 1

	// ESC [ row ; col R is a cursor position report. Shift+F3 shares
	// the shape and is indistinguishable; reports win.
	if final == 'R' && len(params) == 2 {
		return n, inputToken{
			isReport: true,
			report:   Position{Col: max(params[1]-1, 0), Row: max(params[0]-1, 0)},
		}, true
	}

	mods := key.ModNone
	if len(params) >= 2 {
		mods = csiModifier(params[1])
	}

	var k key.Key
	switch final {
	case 'A':
		k = key.KeyUp
	case 'B':
		k = key.KeyDown
	case 'C':
		k = key.KeyRight
	case 'D':
		k = key.KeyLeft
	case 'H':
		k = key.KeyHome
	case 'F':
		k = key.KeyEnd
	case 'P':
		k = key.KeyF1
	case 'Q':
		k = key.KeyF2
	case 'S':
		k = key.KeyF4
	case 'Z':
		return n, keyToken(key.NewSpecialEvent(key.KeyTab, key.ModShift)), true
	case '~':
		if len(params) == 0 {
			return n, inputToken{}, false
		}
		k = tildeKey(params[0])
	}

	if k == key.KeyNone {
		return n, inputToken{}, false
	}
	return n, keyToken(key.NewSpecialEvent(k, mods)), true
}

// decodeSS3 decodes ESC O final.
func decodeSS3(data []byte) (int, inputToken, bool) {
	if len(data) < 3 {
		return 0, inputToken{}, false
	}

	var k key.Key
	switch data[2] {
	case 'A':
		k = key.KeyUp
	case 'B':
		k = key.KeyDown
	case 'C':
		k = key.KeyRight
	case 'D':
		k = key.KeyLeft
	case 'H':
		k = key.KeyHome
	case 'F':
		k = key.KeyEnd
	case 'P':
		k = key.KeyF1
	case 'Q':
		k = key.KeyF2
	case 'R':
		k = key.KeyF3
	case 'S':
		k = key.KeyF4
	default:
		return 3, inputToken{}, false
	}
	return 3, keyToken(key.NewSpecialEvent(k, key.ModNone)), true
}

// tildeKey maps the first parameter of ESC [ n ~.
func tildeKey(n int) key.Key {
	switch n {
	case 1, 7:
		return key.KeyHome
	case 2:
		return key.KeyInsert
	case 3:
		return key.KeyDelete
	case 4, 8:
		return key.KeyEnd
	case 5:
		return key.KeyPageUp
	case 6:
		return key.KeyPageDown
	case 11, 12, 13, 14, 15:
		return key.KeyF1 + key.Key(n-11)
	case 17, 18, 19, 20, 21:
		return key.KeyF6 + key.Key(n-17)
	case 23, 24:
		return key.KeyF11 + key.Key(n-23)
	}
	return key.KeyNone
}

// csiModifier decodes the xterm modifier parameter (1 + bitmask).
func csiModifier(p int) key.Modifier {
	bits := p - 1
	if bits <= 0 {
		return key.ModNone
	}
	var m key.Modifier
	if bits&1 != 0 {
		m |= key.ModShift
	}
	if bits&2 != 0 {
		m |= key.ModAlt
	}
	if bits&4 != 0 {
		m |= key.ModCtrl
	}
	if bits&8 != 0 {
		m |= key.ModMeta
	}
	return m
}

// parseParams splits "1;5" into [1 5]. Empty parameters are 0; private
// markers such as '?' are skipped.
func parseParams(b []byte) []int {
	if len(b) == 0 {
		return nil
	}
	params := []int{0}
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			params[len(params)-1] = params[len(params)-1]*10 + int(c-'0')
		case c == ';':
			params = append(params, 0)
		}
	}
	return params
}
