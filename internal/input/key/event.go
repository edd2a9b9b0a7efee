package key

import (
	"strings"
	"unicode"
)

// Event represents a single key press.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewRuneEvent creates a key event for a character.
// Control chords are normalized to the lowercase rune.
func NewRuneEvent(r rune, mods Modifier) Event {
	if mods.HasCtrl() {
		r = unicode.ToLower(r)
	}
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character without
// Ctrl, Alt or Meta held.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) && !e.IsModified()
}

// IsModified returns true if any modifier is pressed.
// For character events Shift alone does not count, since it changes the
// character itself.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// controlAliases maps Ctrl chords to the named key sharing their C0 control
// byte. A terminal sends the chord and the key as the same byte.
var controlAliases = map[rune]Key{
	'h': KeyBackspace,
	'i': KeyTab,
	'j': KeyEnter,
	'm': KeyEnter,
	'[': KeyEscape,
}

// Canonical returns the event a terminal delivers when e is pressed. A Ctrl
// chord that shares its control byte with a named key becomes that key,
// keeping any other modifiers. Other events are returned unchanged.
func (e Event) Canonical() Event {
	if e.Key != KeyRune || !e.Modifiers.HasCtrl() {
		return e
	}
	named, ok := controlAliases[e.Rune]
	if !ok {
		return e
	}
	return NewSpecialEvent(named, e.Modifiers.Without(ModCtrl))
}

// Equals returns true if two events represent the same key press.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// String returns a readable form such as "Ctrl+Q", "Up" or "a".
func (e Event) String() string {
	mods := e.Modifiers
	if e.IsRune() {
		mods = mods.Without(ModShift)
	}

	var name string
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		name = "Space"
	case e.Key == KeyRune && mods.HasCtrl():
		name = strings.ToUpper(string(e.Rune))
	case e.Key == KeyRune:
		name = string(e.Rune)
	default:
		name = e.Key.String()
	}

	if mods == ModNone {
		return name
	}
	return mods.String() + "+" + name
}

// VimString returns a Vim-style representation like "<C-q>" or "<CR>".
func (e Event) VimString() string {
	if e.IsRune() && !e.IsModified() {
		if e.Rune == ' ' {
			return "<Space>"
		}
		return string(e.Rune)
	}

	mods := e.Modifiers
	if e.IsRune() {
		mods = mods.Without(ModShift)
	}

	var name string
	switch e.Key {
	case KeyRune:
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = strings.ToLower(string(e.Rune))
		}
	case KeyEscape:
		name = "Esc"
	case KeyEnter:
		name = "CR"
	case KeyBackspace:
		name = "BS"
	case KeyDelete:
		name = "Del"
	default:
		name = e.Key.String()
	}

	if mods == ModNone {
		return "<" + name + ">"
	}
	return "<" + mods.ShortString() + "-" + name + ">"
}
