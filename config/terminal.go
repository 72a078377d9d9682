package config

import (
	"os"

	"golang.org/x/term"
)

// EnableColorOutput reports whether colored log levels could be written to
// stream. NO_COLOR environment variable turns colors off.
func EnableColorOutput(stream *os.File) bool {
	if len(os.Getenv("NO_COLOR")) > 0 || !term.IsTerminal(int(stream.Fd())) {
		return false
	}
	return enableVirtualTerminal(stream)
}

// TerminalSize returns size of terminal attached to stream. It fails when
// stream is redirected.
func TerminalSize(stream *os.File) (width, height int, ok bool) {
	if !term.IsTerminal(int(stream.Fd())) {
		return 0, 0, false
	}
	w, h, err := term.GetSize(int(stream.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
