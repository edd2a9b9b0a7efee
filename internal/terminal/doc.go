// Package terminal owns the terminal session: raw-mode lifecycle, device
// queries and the in-memory screen model that output is diffed against.
//
// A Session wraps a Device. Writes (Print, DrawFillerRows, cursor moves)
// land in a ScreenBuffer and reach the device only on Flush, which emits
// the changed cells and positions the device cursor at the pen.
//
// Three devices are provided:
//
//   - TcellDevice drives a tcell screen.
//   - ANSIDevice talks to a unix tty directly with golang.org/x/term and
//     CSI sequences, and answers cursor queries with a DSR exchange.
//   - NullDevice is an in-memory fake for tests.
package terminal
