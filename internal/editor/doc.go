// Package editor implements tilde's read-evaluate-render loop.
//
// The Editor owns the run state and the tracked cursor. Each iteration blocks
// for one terminal event, interprets it, renders and flushes. The device is
// the authority on where the cursor is: before a key is interpreted the
// tracked position is refreshed from a cursor query.
//
// Run holds the terminal in raw mode for the lifetime of the loop and
// releases it on every exit path, including a panic inside the loop.
package editor
