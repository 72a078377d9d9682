//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVirtualTerminal switches console to processing of VT100 sequences,
// available since Windows 10.
func enableVirtualTerminal(stream *os.File) bool {
	if v := windows.RtlGetVersion(); v.MajorVersion < 10 {
		return false
	}
	h := windows.Handle(stream.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
