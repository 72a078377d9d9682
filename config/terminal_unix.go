//go:build !windows

package config

import "os"

func enableVirtualTerminal(*os.File) bool {
	return true
}
