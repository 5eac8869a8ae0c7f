// Package testutil provides synthetic comic pages and fakes shared by tests.
package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// errNoModule is returned when no go.mod sits above this package.
var errNoModule = errors.New("go.mod not found above testutil")

// GetProjectRoot walks up from this source file to the directory that holds
// go.mod.
func GetProjectRoot() (string, error) {
	_, here, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("runtime caller unavailable")
	}
	for dir := filepath.Dir(here); ; {
		if FileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}
		up := filepath.Dir(dir)
		if up == dir {
			return "", errNoModule
		}
		dir = up
	}
}

// FileExists reports whether path can be stat'ed.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
