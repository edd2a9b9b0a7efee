package terminal

import "testing"

func TestPositionClamp(t *testing.T) {
	size := Size{Width: 80, Height: 24}
	tests := []struct {
		name string
		in   Position
		want Position
	}{
		{"inside", Position{10, 5}, Position{10, 5}},
		{"negative", Position{-3, -1}, Position{0, 0}},
		{"beyond right", Position{80, 5}, Position{79, 5}},
		{"beyond bottom", Position{5, 100}, Position{5, 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(size); got != tt.want {
				t.Errorf("Clamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionClampUnknownSize(t *testing.T) {
	got := Position{Col: 500, Row: -2}.Clamp(Size{})
	if got != (Position{Col: 500, Row: 0}) {
		t.Errorf("Clamp(unknown) = %v, want (500, 0)", got)
	}
}

func TestPositionMove(t *testing.T) {
	p := Position{Col: 1, Row: 1}
	tests := []struct {
		dir  Direction
		n    int
		want Position
	}{
		{DirUp, 1, Position{1, 0}},
		{DirUp, 5, Position{1, 0}},
		{DirDown, 2, Position{1, 3}},
		{DirLeft, 1, Position{0, 1}},
		{DirLeft, 4, Position{0, 1}},
		{DirRight, 3, Position{4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			if got := p.Move(tt.dir, tt.n); got != tt.want {
				t.Errorf("Move(%v, %d) = %v, want %v", tt.dir, tt.n, got, tt.want)
			}
		})
	}
}

func TestSizeKnown(t *testing.T) {
	if (Size{}).Known() {
		t.Error("zero size should be unknown")
	}
	if (Size{Width: 80}).Known() {
		t.Error("size with zero height should be unknown")
	}
	if !(Size{Width: 80, Height: 24}).Known() {
		t.Error("80x24 should be known")
	}
	if got := (Size{Width: 80, Height: 24}).String(); got != "80x24" {
		t.Errorf("String() = %q", got)
	}
}

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{'~', 1},
		{'中', 2},
		{'\x01', 1},
	}

	for _, tt := range tests {
		if got := RuneWidth(tt.r); got != tt.want {
			t.Errorf("RuneWidth(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeNormal.String() != "normal" || ModeRaw.String() != "raw" {
		t.Errorf("unexpected mode names %q %q", ModeNormal, ModeRaw)
	}
}
