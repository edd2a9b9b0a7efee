//go:build unix

package terminal

import (
	"bufio"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// pollTimeoutMs bounds each input poll so the reader notices Fini and can
// resolve a lone ESC.
const pollTimeoutMs = 100

// ANSIDevice implements Device directly on a unix tty. Raw mode and size
// come from golang.org/x/term; output is CSI sequences; cursor position is
// asked with a DSR request whose reply arrives on the input stream.
type ANSIDevice struct {
	in, out *os.File
	inFd    int
	outFd   int

	reportTimeout time.Duration

	mu       sync.Mutex
	w        *bufio.Writer
	oldState *term.State
	seq      []byte
	last     Position
	lastOK   bool

	decoder inputDecoder
	events  chan Event
	reports chan Position
	stopCh  chan struct{}
	doneCh  chan struct{}
	closed  chan struct{}
	winch   chan os.Signal
}

// NewANSIDevice creates a device reading keys from in and writing to out.
func NewANSIDevice(in, out *os.File, reportTimeout time.Duration) *ANSIDevice {
	if reportTimeout <= 0 {
		reportTimeout = DefaultCursorReportTimeout
	}
	return &ANSIDevice{
		in:            in,
		out:           out,
		inFd:          int(in.Fd()),
		outFd:         int(out.Fd()),
		reportTimeout: reportTimeout,
		w:             bufio.NewWriterSize(out, 4096),
		events:        make(chan Event, 256),
		reports:       make(chan Position, 1),
	}
}

func openANSI(opts DeviceOptions) (Device, error) {
	return NewANSIDevice(os.Stdin, os.Stdout, opts.CursorReportTimeout), nil
}

func (d *ANSIDevice) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.oldState != nil {
		return nil
	}
	if !term.IsTerminal(d.inFd) {
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(d.inFd)
	if err != nil {
		return err
	}
	d.oldState = old
	d.lastOK = false

	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.closed = make(chan struct{})
	d.winch = make(chan os.Signal, 1)
	signal.Notify(d.winch, syscall.SIGWINCH)

	go d.readLoop(d.stopCh, d.doneCh)
	go d.watchResize(d.stopCh, d.winch)

	d.w.WriteString(seqAutoWrapOff)
	return d.w.Flush()
}

func (d *ANSIDevice) Fini() error {
	d.mu.Lock()
	if d.oldState == nil {
		d.mu.Unlock()
		return nil
	}
	old := d.oldState
	d.oldState = nil
	signal.Stop(d.winch)
	close(d.stopCh)
	close(d.closed)
	done := d.doneCh

	d.w.WriteString(seqResetAttrs)
	d.w.WriteString(seqAutoWrapOn)
	d.w.WriteString(seqShowCursor)
	flushErr := d.w.Flush()
	d.mu.Unlock()

	// The reader wakes at least every poll timeout.
	select {
	case <-done:
	case <-time.After(2 * pollTimeoutMs * time.Millisecond):
	}

	if err := term.Restore(d.inFd, old); err != nil {
		return err
	}
	return flushErr
}

func (d *ANSIDevice) Size() (Size, error) {
	w, h, err := term.GetSize(d.outFd)
	if err != nil {
		return Size{}, err
	}
	return Size{Width: w, Height: h}, nil
}

// CursorPosition sends a DSR request and waits for the reply. Key presses
// that arrive while waiting stay queued for PollEvent.
func (d *ANSIDevice) CursorPosition() (Position, error) {
	d.mu.Lock()
	if d.oldState == nil {
		d.mu.Unlock()
		return Position{}, ErrNotStarted
	}
	closed := d.closed

	// Discard replies nobody waited for.
drain:
	for {
		select {
		case <-d.reports:
		default:
			break drain
		}
	}

	d.w.WriteString(seqRequestCursor)
	err := d.w.Flush()
	d.mu.Unlock()
	if err != nil {
		return Position{}, err
	}

	timer := time.NewTimer(d.reportTimeout)
	defer timer.Stop()

	select {
	case pos := <-d.reports:
		return pos, nil
	case <-timer.C:
		return Position{}, ErrCursorReportTimeout
	case <-closed:
		return Position{}, ErrDeviceClosed
	}
}

func (d *ANSIDevice) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.w.WriteString(seqResetAttrs)
	d.w.WriteString(seqClearScreen)
	d.w.WriteString(seqCursorHome)
	d.last, d.lastOK = Origin, true
	return d.w.Flush()
}

func (d *ANSIDevice) SetCell(col, row int, cell Cell) {
	if cell.IsContinuation() || col < 0 || row < 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lastOK || d.last != (Position{Col: col, Row: row}) {
		d.seq = appendCursorPos(d.seq[:0], col, row)
		d.w.Write(d.seq)
	}
	r := cell.Rune
	if r < 0x20 || r == 0x7f {
		r = ' '
	}
	d.w.WriteRune(r)
	d.last, d.lastOK = Position{Col: col + max(cell.Width, 1), Row: row}, true
}

func (d *ANSIDevice) ShowCursor(col, row int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq = appendCursorPos(d.seq[:0], col, row)
	d.w.Write(d.seq)
	d.w.WriteString(seqShowCursor)
	d.last, d.lastOK = Position{Col: col, Row: row}, true
}

func (d *ANSIDevice) Show() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.w.Flush()
}

func (d *ANSIDevice) PollEvent() Event {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()

	select {
	case ev := <-d.events:
		return ev
	case <-closed:
		return Event{Type: EventClosed}
	}
}

func (d *ANSIDevice) PostEvent(ev Event) error {
	select {
	case d.events <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// readLoop reads the tty until stopCh closes, delivering key events and
// routing cursor reports to CursorPosition.
func (d *ANSIDevice) readLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	buf := make([]byte, 256)
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		fds := []unix.PollFd{{Fd: int32(d.inFd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			d.deliver(stopCh, Event{Type: EventError, Err: err})
			return
		}
		if n == 0 {
			d.dispatch(stopCh, d.decoder.flushPending())
			continue
		}

		rn, err := unix.Read(d.inFd, buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			d.deliver(stopCh, Event{Type: EventError, Err: err})
			return
		}
		if rn == 0 {
			d.deliver(stopCh, Event{Type: EventClosed})
			return
		}

		d.dispatch(stopCh, d.decoder.feed(buf[:rn]))
	}
}

func (d *ANSIDevice) dispatch(stopCh chan struct{}, tokens []inputToken) {
	for _, tok := range tokens {
		if tok.isReport {
			select {
			case d.reports <- tok.report:
			default:
			}
			continue
		}
		d.deliver(stopCh, KeyEvent(tok.key))
	}
}

func (d *ANSIDevice) deliver(stopCh chan struct{}, ev Event) {
	select {
	case d.events <- ev:
	case <-stopCh:
	}
}

// watchResize turns SIGWINCH into resize events.
func (d *ANSIDevice) watchResize(stopCh chan struct{}, winch chan os.Signal) {
	for {
		select {
		case <-stopCh:
			return
		case <-winch:
			if size, err := d.Size(); err == nil && size.Known() {
				d.deliver(stopCh, ResizeEvent(size.Width, size.Height))
			}
		}
	}
}
