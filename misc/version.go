// Package misc keeps program identity set at build time.
package misc

import (
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X fjc/misc.version=... -X fjc/misc.gitHash=...".
var (
	version = ""
	gitHash = ""
)

const appName = "fjc"

// GetAppName returns program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module version from
// build information.
func GetVersion() string {
	if version != "" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}
	return "dev"
}

// GetGitHash returns VCS revision the program was built from.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				if len(s.Value) > 8 {
					return s.Value[:8]
				}
				return s.Value
			}
		}
	}
	return "unknown"
}

// TempPattern returns pattern for os.CreateTemp named after the program.
func TempPattern(kind, ext string) string {
	name := appName
	if kind != "" {
		name += "-" + kind
	}
	return filepath.Base(name) + ".*" + ext
}
