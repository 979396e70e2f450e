package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Environment variable to configure log file path.
const envLogPath = "ADMINKIT_LOG"

var (
	mu      sync.Mutex
	std     *log.Logger
	logFile *os.File
)

// InitFromEnv initializes the logger using ADMINKIT_LOG or a file next to
// the executable.
func InitFromEnv() error {
	return Init(os.Getenv(envLogPath))
}

// Init opens path in append mode, creating parent directories as needed.
// An empty path selects adminkit.log beside the executable, or in the
// working directory when the executable path is unknown.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if std != nil {
		return nil
	}
	if path == "" {
		path = defaultPath()
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	std = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	return nil
}

// SetOutput redirects logging to w, closing any file opened by Init.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	std = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

// Close closes the underlying log file, if open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	std = nil
	return err
}

// Infof logs informational messages.
func Infof(format string, args ...any) { write("INFO", format, args...) }

// Warnf logs recoverable problems.
func Warnf(format string, args ...any) { write("WARN", format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { write("ERROR", format, args...) }

func write(level string, format string, args ...any) {
	mu.Lock()
	l := std
	mu.Unlock()
	if l == nil {
		// Fall back to stderr rather than dropping the line.
		l = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	}
	l.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func defaultPath() string {
	if exePath, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exePath), "adminkit.log")
	}
	return "./adminkit.log"
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
