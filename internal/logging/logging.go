// Package logging sets up the rotating application log. The TUI owns the
// terminal, so everything loggable goes to a file.
package logging

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup returns a logger writing to a size-rotated file. If the log
// directory cannot be created the logger falls back to stderr rather than
// failing startup.
func Setup(path string, maxSizeMB int) *log.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	return log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}
