// Package misc keeps build time program identity.
package misc

import (
	"runtime/debug"
)

const appName = "epubr"

// set by linker: -X epubr/misc.version=... -X epubr/misc.gitHash=...
var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name suitable for file names and logger names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version. It is also the library version embedded
// into persisted cache records, so any upgrade invalidates previously cached
// book structure.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

// GetGitHash returns vcs revision program was built from, if known.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
