package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the name of the tray application, used for its data directory.
const AppName = "WheneverTray"

// PlatformDefaults holds the defaults that depend on the operating system.
type PlatformDefaults struct {
	// Command is the scheduler executable.
	Command string
	// LogViewer opens a text file given as its last argument.
	LogViewer CommandLine
	// dataDir returns the user data directory.
	dataDir func() (string, error)
}

var platforms = map[string]PlatformDefaults{
	"windows": {
		Command:   "whenever.exe",
		LogViewer: CommandLine{"notepad.exe"},
		dataDir:   configSubdir,
	},
	"darwin": {
		Command:   "whenever",
		LogViewer: CommandLine{"open", "-t"},
		dataDir:   configSubdir,
	},
}

var unixPlatform = PlatformDefaults{
	Command:   "whenever",
	LogViewer: CommandLine{"gnome-text-editor"},
	dataDir:   dotDir,
}

// Platform is the defaults table for the running operating system.
var Platform = selectPlatform(runtime.GOOS)

func selectPlatform(goos string) PlatformDefaults {
	if p, ok := platforms[goos]; ok {
		return p
	}
	return unixPlatform
}

// DataDir returns the user data directory of the tray, where both its own
// configuration and the scheduler's default files are kept. The current
// directory is used if no home directory can be found.
func DataDir() string {
	dir, err := Platform.dataDir()
	if err != nil {
		return "."
	}
	return dir
}

// configSubdir returns <UserConfigDir>/WheneverTray, e.g. %APPDATA%\WheneverTray.
func configSubdir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// dotDir returns ~/.WheneverTray.
func dotDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "."+AppName), nil
}
