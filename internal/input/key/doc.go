// Package key provides key identities, modifiers and key events, plus a
// parser for the key specifications used in the configuration file.
//
// Specifications can be written as:
//
//   - Simple keys: "a", "Enter", "Escape", "Up"
//   - With modifiers: "Ctrl+Q", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-q>", "<A-f>", "<CR>", "<BS>"
//
// Control chords are normalized to a lowercase rune with ModCtrl, which is
// also how the terminal devices report them, so a parsed specification can
// be compared directly with an incoming event.
package key
