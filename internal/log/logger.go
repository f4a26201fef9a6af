package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"longcatnode/internal/core"
)

// AppLogger is the application logger implementation.
type AppLogger struct {
	logger     *log.Logger
	debug      bool
	component  string
	fileHandle *os.File
	mu         *sync.Mutex
}

// NewAppLoggerWithConfig creates a logger instance writing to output.
func NewAppLoggerWithConfig(output io.Writer, debugMode bool) *AppLogger {
	return &AppLogger{
		logger: log.New(output, "", log.LstdFlags),
		debug:  debugMode,
		mu:     &sync.Mutex{},
	}
}

// WithComponent returns a logger sharing the same sink that tags each line with component.
func (l *AppLogger) WithComponent(component string) *AppLogger {
	if l == nil {
		return nil
	}
	return &AppLogger{
		logger:     l.logger,
		debug:      l.debug,
		component:  component,
		fileHandle: l.fileHandle,
		mu:         l.mu,
	}
}

// Component tags logger with component when it is an *AppLogger and returns
// other implementations unchanged.
func Component(logger core.Logger, component string) core.Logger {
	if appLogger, ok := logger.(*AppLogger); ok && appLogger != nil {
		return appLogger.WithComponent(component)
	}
	return logger
}

func (l *AppLogger) output(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		msg = "(" + l.component + ") " + msg
	}
	_ = l.logger.Output(3, "["+level+"] "+msg)
}

// Debug logs a message at DEBUG level.
func (l *AppLogger) Debug(format string, args ...any) {
	if l != nil && l.debug {
		l.output("DEBUG", format, args...)
	}
}

// Info logs a message at INFO level.
func (l *AppLogger) Info(format string, args ...any) {
	if l != nil {
		l.output("INFO", format, args...)
	}
}

// Warn logs a message at WARN level.
func (l *AppLogger) Warn(format string, args ...any) {
	if l != nil {
		l.output("WARN", format, args...)
	}
}

// Error logs a message at ERROR level.
func (l *AppLogger) Error(format string, args ...any) {
	if l != nil {
		l.output("ERROR", format, args...)
	}
}

// Fatal logs a message at FATAL level and terminates the process.
func (l *AppLogger) Fatal(format string, args ...any) {
	if l != nil {
		l.output("FATAL", format, args...)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[FATAL] "+format+"\n", args...)
	}
	os.Exit(1)
}

// Close safely closes log file handle.
func (l *AppLogger) Close() error {
	if l == nil || l.mu == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileHandle != nil {
		err := l.fileHandle.Close()
		l.fileHandle = nil
		return err
	}
	return nil
}

// containsPathTraversal reports whether path has a ".." segment.
func containsPathTraversal(path string) bool {
	segments := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, segment := range segments {
		if segment == ".." {
			return true
		}
	}
	return false
}

// openDebugFile resolves DEBUG_FILE. A non-empty warning means stdout is used instead.
func openDebugFile(debugFile string) (io.Writer, *os.File, string) {
	if debugFile == "" {
		return os.Stdout, nil, ""
	}

	if len(debugFile) > core.MaxDebugFilePathLength {
		return os.Stdout, nil, "DEBUG_FILE path too long, falling back to stdout"
	}

	if containsPathTraversal(debugFile) {
		return os.Stdout, nil, "DEBUG_FILE contains path traversal characters, falling back to stdout"
	}

	//nolint:gosec // G304: debugFile from env var, validated by containsPathTraversal
	file, err := os.OpenFile(debugFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, core.FilePermissionReadWrite)
	if err != nil {
		return os.Stdout, nil, fmt.Sprintf("Failed to open DEBUG_FILE '%s': %v, falling back to stdout", debugFile, err)
	}

	return file, file, ""
}

// IsDebug returns whether the app is running in debug mode.
func IsDebug() bool {
	return os.Getenv("GIN_MODE") == "debug"
}

// CreateLogger creates a logger instance (for dependency injection).
func CreateLogger() core.Logger {
	output, fileHandle, warning := openDebugFile(os.Getenv("DEBUG_FILE"))

	logger := NewAppLoggerWithConfig(output, IsDebug())
	logger.fileHandle = fileHandle

	if warning != "" {
		logger.Warn("%s", warning)
	}
	return logger
}
