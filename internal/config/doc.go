// Package config loads tilde's optional configuration file.
//
// The file lives at tilde/config.toml under the user configuration
// directory. A missing file means built-in defaults; a file that does not
// parse or validate is an error. Watcher reloads the file when it changes.
//
//	[terminal]
//	device = "ansi"                 # "ansi" or "tcell"
//	cursor_report_timeout = "500ms"
//
//	[editor]
//	quit = "Ctrl+Q"
//	diagnostic = "Ctrl+G"
//	filler = "~"
//	sentinel_column = 1
//	goodbye = "Goodbye."
//
//	[log]
//	level = "info"                  # debug, info, warn or error
//	file = ""                       # empty logs to stderr
package config
