package terminal

import (
	"fmt"

	"github.com/dshills/tilde/internal/input/key"
)

// EventType identifies the kind of terminal event.
type EventType uint8

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventInterrupt carries application data posted with PostEvent.
	EventInterrupt
	// EventError reports a failed input read. Err is set.
	EventError
	// EventClosed is returned once the device stops delivering input.
	EventClosed
)

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventInterrupt:
		return "interrupt"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is a single input event read from a device.
type Event struct {
	Type EventType

	// Key is set for EventKey.
	Key key.Event

	// Width and Height are set for EventResize.
	Width  int
	Height int

	// Data is set for EventInterrupt.
	Data any

	// Err is set for EventError.
	Err error
}

// KeyEvent wraps a key press.
func KeyEvent(k key.Event) Event {
	return Event{Type: EventKey, Key: k}
}

// ResizeEvent reports new terminal dimensions.
func ResizeEvent(width, height int) Event {
	return Event{Type: EventResize, Width: width, Height: height}
}

// InterruptEvent wraps application data for delivery through the event
// queue.
func InterruptEvent(data any) Event {
	return Event{Type: EventInterrupt, Data: data}
}

func (e Event) String() string {
	switch e.Type {
	case EventKey:
		return "key " + e.Key.String()
	case EventResize:
		return fmt.Sprintf("resize %dx%d", e.Width, e.Height)
	case EventInterrupt:
		return fmt.Sprintf("interrupt %T", e.Data)
	case EventError:
		return fmt.Sprintf("error %v", e.Err)
	default:
		return e.Type.String()
	}
}
