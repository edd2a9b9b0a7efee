package editor

import (
	"errors"
	"testing"

	"github.com/dshills/tilde/internal/input/key"
)

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()

	tests := []struct {
		spec string
		want Action
	}{
		{"Ctrl+Q", ActionQuit},
		{"<C-q>", ActionQuit},
		{"Ctrl+G", ActionDiagnostic},
		{"Ctrl+L", ActionNone},
		{"q", ActionNone},
		{"Up", ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if got := km.Lookup(key.MustParse(tt.spec)); got != tt.want {
				t.Errorf("Lookup(%s) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}

	if err := km.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestKeymapIgnoresShiftOnCharacters(t *testing.T) {
	km := DefaultKeymap()
	ev := key.NewRuneEvent('Q', key.ModCtrl|key.ModShift)
	if got := km.Lookup(ev); got != ActionQuit {
		t.Errorf("Lookup(Ctrl+Shift+Q) = %v, want quit", got)
	}
}

func TestNewKeymapRejects(t *testing.T) {
	tests := []struct {
		name       string
		quit, diag string
		want       error
		action     Action
	}{
		{"printable quit", "q", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"arrow quit", "Ctrl+Up", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"backspace diagnostic", "Ctrl+Q", "Backspace", ErrReservedKey, ActionDiagnostic},
		{"enter quit", "<CR>", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"ctrl m is enter", "Ctrl+M", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"ctrl j is enter", "<C-j>", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"ctrl h is backspace", "Ctrl+H", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"ctrl i is tab", "Ctrl+Q", "Ctrl+I", ErrReservedKey, ActionDiagnostic},
		{"ctrl bracket is escape", "<C-[>", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"alt ctrl m", "Ctrl+Alt+M", "Ctrl+G", ErrReservedKey, ActionQuit},
		{"same chord", "Ctrl+Q", "<C-q>", ErrDuplicateBinding, ActionDiagnostic},
		{"unparsable", "Hyper+Q", "Ctrl+G", key.ErrInvalidSpec, ActionQuit},
		{"empty", "", "Ctrl+G", key.ErrEmptySpec, ActionQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := NewKeymap(tt.quit, tt.diag)
			if km != nil {
				t.Errorf("NewKeymap() returned a keymap")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewKeymap() error = %v, want %v", err, tt.want)
			}
			var be *BindingError
			if !errors.As(err, &be) {
				t.Fatalf("error %T is not *BindingError", err)
			}
			if be.Action != tt.action {
				t.Errorf("Action = %v, want %v", be.Action, tt.action)
			}
		})
	}
}

func TestKeymapAllowsModifiedSpecialKeys(t *testing.T) {
	km, err := NewKeymap("Alt+Escape", "F5")
	if err != nil {
		t.Fatalf("NewKeymap() error = %v", err)
	}
	if got := km.Lookup(key.NewSpecialEvent(key.KeyEscape, key.ModAlt)); got != ActionQuit {
		t.Errorf("Lookup(Alt+Escape) = %v, want quit", got)
	}
	if got := km.Lookup(key.NewSpecialEvent(key.KeyEscape, key.ModNone)); got != ActionNone {
		t.Errorf("Lookup(Escape) = %v, want none", got)
	}
	chord, ok := km.Chord(ActionDiagnostic)
	if !ok || chord.Key != key.KeyF5 {
		t.Errorf("Chord(diagnostic) = %v, %v", chord, ok)
	}
}

func TestKeymapString(t *testing.T) {
	if got := DefaultKeymap().String(); got != "quit=<C-q> diagnostic=<C-g>" {
		t.Errorf("String() = %q", got)
	}
}

func TestKeymapValidate(t *testing.T) {
	var nilMap *Keymap
	if err := nilMap.Validate(); !errors.Is(err, ErrNoQuitBinding) {
		t.Errorf("nil Validate() = %v, want ErrNoQuitBinding", err)
	}
	if err := (&Keymap{}).Validate(); !errors.Is(err, ErrNoQuitBinding) {
		t.Errorf("empty Validate() = %v, want ErrNoQuitBinding", err)
	}
	if got := nilMap.Lookup(key.MustParse("Ctrl+Q")); got != ActionNone {
		t.Errorf("nil Lookup() = %v, want none", got)
	}
}

func TestActionAndStateStrings(t *testing.T) {
	if ActionQuit.String() != "quit" || ActionDiagnostic.String() != "diagnostic" || ActionNone.String() != "none" {
		t.Error("unexpected Action names")
	}
	if Running.String() != "running" || Quitting.String() != "quitting" {
		t.Error("unexpected RunState names")
	}
	if RunState(9).String() != "unknown" || Action(9).String() != "unknown" {
		t.Error("out of range values should be unknown")
	}
}
