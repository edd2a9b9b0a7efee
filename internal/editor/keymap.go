package editor

import (
	"fmt"
	"strings"

	"github.com/dshills/tilde/internal/input/key"
)

// Action is a command a key chord can trigger.
type Action int

const (
	// ActionNone means the key has no binding.
	ActionNone Action = iota
	// ActionQuit ends the loop.
	ActionQuit
	// ActionDiagnostic shows the cursor and terminal size.
	ActionDiagnostic
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionQuit:
		return "quit"
	case ActionDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Default chords.
const (
	DefaultQuitKey       = "Ctrl+Q"
	DefaultDiagnosticKey = "Ctrl+G"
)

// Keymap binds chords to actions. Each action has exactly one chord and no
// chord serves two actions. Editing keys (printable characters, arrows,
// Backspace and Enter) cannot be bound, nor can Ctrl chords that the
// terminal sends as the same byte as a named key.
type Keymap struct {
	bindings map[key.Event]Action
	chords   map[Action]key.Event
}

// NewKeymap builds a keymap from quit and diagnostic key specifications.
func NewKeymap(quit, diagnostic string) (*Keymap, error) {
	km := &Keymap{
		bindings: make(map[key.Event]Action),
		chords:   make(map[Action]key.Event),
	}
	if err := km.bind(ActionQuit, quit); err != nil {
		return nil, err
	}
	if err := km.bind(ActionDiagnostic, diagnostic); err != nil {
		return nil, err
	}
	return km, nil
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() *Keymap {
	km, err := NewKeymap(DefaultQuitKey, DefaultDiagnosticKey)
	if err != nil {
		panic("editor: invalid default keymap: " + err.Error())
	}
	return km
}

func (km *Keymap) bind(action Action, spec string) error {
	ev, err := key.Parse(spec)
	if err != nil {
		return &BindingError{Action: action, Spec: spec, Err: err}
	}
	ev = normalize(ev)

	if isEditingKey(ev) {
		return &BindingError{Action: action, Spec: spec, Err: ErrReservedKey}
	}
	if delivered := ev.Canonical(); !delivered.Equals(ev) {
		return &BindingError{Action: action, Spec: spec,
			Err: fmt.Errorf("%w: terminals send it as %s", ErrReservedKey, delivered)}
	}
	if other, ok := km.bindings[ev]; ok && other != action {
		return &BindingError{Action: action, Spec: spec, Err: ErrDuplicateBinding}
	}
	if old, ok := km.chords[action]; ok {
		delete(km.bindings, old)
	}

	km.bindings[ev] = action
	km.chords[action] = ev
	return nil
}

// Lookup returns the action bound to ev, or ActionNone.
func (km *Keymap) Lookup(ev key.Event) Action {
	if km == nil {
		return ActionNone
	}
	return km.bindings[normalize(ev)]
}

// Chord returns the chord bound to action.
func (km *Keymap) Chord(action Action) (key.Event, bool) {
	ev, ok := km.chords[action]
	return ev, ok
}

// String lists the bindings as "quit=<C-q> diagnostic=<C-g>".
func (km *Keymap) String() string {
	var b strings.Builder
	for _, action := range []Action{ActionQuit, ActionDiagnostic} {
		ev, ok := km.Chord(action)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(action.String() + "=" + key.FormatSpec(ev))
	}
	return b.String()
}

// Validate checks that the keymap can quit.
func (km *Keymap) Validate() error {
	if km == nil {
		return ErrNoQuitBinding
	}
	if _, ok := km.chords[ActionQuit]; !ok {
		return ErrNoQuitBinding
	}
	return nil
}

// normalize drops Shift from character chords, since the character
// already carries it.
func normalize(ev key.Event) key.Event {
	if ev.IsRune() {
		ev.Modifiers = ev.Modifiers.Without(key.ModShift)
	}
	return ev
}

func isEditingKey(ev key.Event) bool {
	switch {
	case ev.IsChar(), ev.Key.IsArrowKey():
		return true
	case ev.IsRune():
		return !ev.IsModified()
	}
	return ev.Key == key.KeyBackspace || ev.Key == key.KeyEnter
}
