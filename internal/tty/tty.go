// Package tty detects terminal attachment and size for comet2's interactive session. Unlike the
// teacher's tty package, which drives the LC-3 console's keyboard/display devices as raw
// asynchronous terminal I/O, COMET II has no memory-mapped console: IN/OUT are synchronous line
// reads and writes, so there is nothing here to poll. What is grounded on the teacher's package
// is narrower: deciding whether stdin/stdout are terminals at all, and if so, how wide.
package tty

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal's column width, or fallback if f is not a terminal or the size
// cannot be read.
func Width(f *os.File, fallback int) int {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return fallback
	}

	if ws.Col == 0 {
		return fallback
	}

	return int(ws.Col)
}
