package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logFileName is the tray's own log in the data directory. The scheduler log
// is a different file.
const logFileName = "whenever_tray.log"

// newLogger creates a logger writing to both stderr and a rotated log file in
// the given directory. The returned file must be closed.
func newLogger(dir string, verbose bool) (zerolog.Logger, *lumberjack.Logger) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, logFileName),
		MaxSize:    1, // MB
		MaxBackups: 3,
		MaxAge:     30, // days
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(console, file)).
		With().
		Timestamp().
		Logger()

	return logger, file
}
