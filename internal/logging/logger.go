// Package logging wraps a package-level charmbracelet logger.
//
// CLI commands log to stderr. The TUI redirects output to a dated file under
// ~/.factdice/logs so log lines never tear the rendered widget.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	logger  = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	logFile *os.File
)

// SetOutput points the logger at w, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// SetVerbose switches between debug and warn level.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
}

// InitFile redirects logging to dir/factdice-YYYY-MM-DD.log at debug level.
// An empty dir means ~/.factdice/logs.
func InitFile(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".factdice", "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("factdice-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening log file: %w", err)
	}

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
	})
	mu.Unlock()

	Info("factdice session started")
	return path, nil
}

// Close releases the log file, if any, and restores stderr output.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	}
}

func current() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) { current().Debug(msg, keyvals...) }

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) { current().Info(msg, keyvals...) }

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) { current().Warn(msg, keyvals...) }

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) { current().Error(msg, keyvals...) }

// WithPrefix returns a child logger carrying prefix.
func WithPrefix(prefix string) *log.Logger {
	return current().WithPrefix(prefix)
}
