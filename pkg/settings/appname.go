package settings

import (
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const unknownApplication = "unknown-service"

// ApplicationName identifies the running program: the last element of the
// main package path, else the executable name without its extension.
func ApplicationName() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Path != "" && info.Path != "command-line-arguments" {
		return path.Base(info.Path)
	}

	if exe, err := os.Executable(); err == nil {
		name := filepath.Base(exe)
		if name = strings.TrimSuffix(name, filepath.Ext(name)); name != "" {
			return name
		}
	}
	return unknownApplication
}
