package editor

// RunState is the editor's lifecycle state.
type RunState int

const (
	// Running is the initial state.
	Running RunState = iota
	// Quitting is entered on a quit request. It is terminal.
	Quitting
)

// String returns the state name.
func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Quitting:
		return "quitting"
	default:
		return "unknown"
	}
}
