package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/stylec/pkg"
)

// baseConfig is the base name of the user configuration file.
const baseConfig = "config.yaml"

var defaultDirMode os.FileMode = 0o700

// debugBin matches the executable name dlv builds by default.
var debugBin = regexp.MustCompile(`^__debug_bin\d*$`)

// appDir is the name of the per-user configuration and cache directories:
// the executable's base name without extension or leading dots. Debug
// builds use the package name.
var appDir = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	name := filepath.Base(exe)
	name = strings.TrimLeft(strings.TrimSuffix(name, filepath.Ext(name)), ".")

	if name == "" || debugBin.MatchString(name) {
		return pkg.Name
	}

	return name
})

// userDir joins appDir to the directory returned by base, falling back to
// hidden below the home directory and then to the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, appDir())
}

var (
	configDir = sync.OnceValue(func() string { return userDir(os.UserConfigDir, ".config") })
	cacheDir  = sync.OnceValue(func() string { return userDir(os.UserCacheDir, ".cache") })
)

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
