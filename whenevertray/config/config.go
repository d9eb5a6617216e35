// Package config resolves the command lines used to run the whenever
// scheduler from the tray's TOML configuration file, falling back to
// platform defaults for anything that is missing or invalid.
//
// The configuration file lives in the user data directory and looks like
// this, with every key optional:
//
//    [whenever_tray]
//    whenever_command = "/usr/local/bin/whenever"
//    whenever_config = "/home/me/.whenever.toml"
//    whenever_logfile = "/home/me/whenever.log"
//    whenever_loglevel = "debug"
//    whenever_priority = "low"
//    logview_command = "mousepad"
//
package config

import (
	"io"
	"os"
	"path/filepath"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/exec"
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	// FileName is the name of the configuration file in the data directory.
	FileName = "whenever_tray.toml"
	// Table is the TOML table holding the options.
	Table = "whenever_tray"

	schedulerConfigName = "whenever.toml"
	schedulerLogName    = "whenever.log"

	// DefaultLogLevel is used when no or an unknown log level is given.
	DefaultLogLevel = "info"
	// DefaultPriority is used when no or an unknown priority is given.
	DefaultPriority = exec.PriorityMinimum
)

// LogLevels lists the log levels the scheduler accepts.
var LogLevels = []string{"error", "warn", "info", "debug", "trace"}

// Options is the [whenever_tray] table. Empty fields are unset.
type Options struct {
	WheneverCommand  string `toml:"whenever_command"`
	WheneverConfig   string `toml:"whenever_config"`
	WheneverLogfile  string `toml:"whenever_logfile"`
	WheneverLoglevel string `toml:"whenever_loglevel"`
	WheneverPriority string `toml:"whenever_priority"`
	LogviewCommand   string `toml:"logview_command"`
}

type file struct {
	WheneverTray *Options `toml:"whenever_tray"`
}

// Resolved is the result of resolving the configuration.
type Resolved struct {
	Commands Commands
	Priority exec.Priority
	// Path is the configuration file that was read, if any.
	Path string
	// Undecoded lists keys in the file that were not recognized.
	Undecoded []string
}

// ErrInvalid is wrapped by the warning returned when the configuration
// cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// DefaultPath returns the path of the configuration file in the given data
// directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Defaults returns the resolved default configuration for the given data
// directory.
func Defaults(dataDir string) *Resolved {
	return resolve(Options{}, dataDir)
}

// Load resolves the configuration file at path. The returned Resolved is
// never nil: if the file cannot be read or parsed, the full default set is
// returned along with a warning error that the caller should surface.
func Load(path, dataDir string) (*Resolved, error) {
	f, err := os.Open(path)
	if err != nil {
		r := Defaults(dataDir)
		return r, errors.Wrap(err, "failed to open configuration")
	}
	defer f.Close()

	r, err := Parse(f, dataDir)
	r.Path = path
	return r, err
}

// Parse resolves the configuration read from r. See Load.
func Parse(r io.Reader, dataDir string) (*Resolved, error) {
	var f file

	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return Defaults(dataDir), errors.Wrapf(ErrInvalid, "%v", err)
	}

	if f.WheneverTray == nil {
		return Defaults(dataDir), nil
	}

	resolved := resolve(*f.WheneverTray, dataDir)
	for _, key := range meta.Undecoded() {
		resolved.Undecoded = append(resolved.Undecoded, key.String())
	}

	return resolved, nil
}

func resolve(opts Options, dataDir string) *Resolved {
	command := orDefault(opts.WheneverCommand, Platform.Command)
	config := orDefault(opts.WheneverConfig, filepath.Join(dataDir, schedulerConfigName))
	logfile := orDefault(opts.WheneverLogfile, filepath.Join(dataDir, schedulerLogName))

	loglevel := DefaultLogLevel
	if isLogLevel(opts.WheneverLoglevel) {
		loglevel = opts.WheneverLoglevel
	}

	prio, ok := exec.ParsePriority(opts.WheneverPriority)
	if !ok {
		prio = DefaultPriority
	}

	logview := Platform.LogViewer
	if opts.LogviewCommand != "" {
		logview = CommandLine{opts.LogviewCommand}
	}

	return &Resolved{
		Commands: Commands{
			Launch:  CommandLine{command, "-L", loglevel, "-l", logfile, config},
			LogView: logview.With(logfile),
			Version: CommandLine{command, "--version"},
		},
		Priority: prio,
	}
}

func isLogLevel(level string) bool {
	for _, known := range LogLevels {
		if level == known {
			return true
		}
	}
	return false
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
