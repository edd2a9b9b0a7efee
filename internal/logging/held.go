package logging

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DefaultHoldLimit bounds how much output a HeldWriter queues.
const DefaultHoldLimit = 1 << 20

// HeldWriter passes writes through to an underlying writer except while it
// is held. Held output is queued and written on Release.
//
// The editor holds the log while the terminal is in raw mode, when stderr
// shares the screen with the editor and line endings are not translated.
type HeldWriter struct {
	mu      sync.Mutex
	out     io.Writer
	held    bool
	limit   int
	buf     bytes.Buffer
	dropped int
}

// NewHeldWriter creates a HeldWriter over out that queues at most limit
// bytes. A limit of 0 uses DefaultHoldLimit.
func NewHeldWriter(out io.Writer, limit int) *HeldWriter {
	if limit <= 0 {
		limit = DefaultHoldLimit
	}
	return &HeldWriter{out: out, limit: limit}
}

func (w *HeldWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.held {
		return w.out.Write(p)
	}
	if w.buf.Len()+len(p) > w.limit {
		w.dropped += len(p)
		return len(p), nil
	}
	return w.buf.Write(p)
}

// Hold starts queueing writes.
func (w *HeldWriter) Hold() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.held = true
}

// Release writes the queued output and resumes passing writes through.
func (w *HeldWriter) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.held {
		return nil
	}
	w.held = false

	_, err := w.buf.WriteTo(w.out)
	w.buf.Reset()
	if w.dropped > 0 && err == nil {
		_, err = fmt.Fprintf(w.out, "%d bytes of log output dropped while held\n", w.dropped)
	}
	w.dropped = 0
	return err
}
