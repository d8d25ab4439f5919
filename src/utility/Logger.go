package utility

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config value (debug, info, warn, error) to a LogLevel.
// Unknown values fall back to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l LogLevel) charm() log.Level {
	switch l {
	case DEBUG:
		return log.DebugLevel
	case WARN:
		return log.WarnLevel
	case ERROR:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

const timeFormat = "15:04:05.000"

// Logger provides leveled logging with file rotation.
// Child loggers created with WithPrefix share the parent's log file.
type Logger struct {
	level      LogLevel
	logDir     string
	currentLog *os.File
	mu         sync.Mutex
	mode       string // "file", "cli", "journal", "writer"
	out        io.Writer
	base       *log.Logger
}

// NewLoggerWithDir creates a logger for mode. File mode writes under dir.
func NewLoggerWithDir(mode, dir string, level LogLevel) *Logger {
	logger := &Logger{
		level:  level,
		logDir: dir,
		mode:   mode,
	}

	var out io.Writer = os.Stderr
	timestamps := true

	switch mode {
	case "file":
		logger.init()
		if logger.currentLog != nil {
			out = logger.currentLog
		}
	case "journal":
		// journald stamps lines itself
		out = os.Stdout
		timestamps = false
	}

	logger.out = out
	logger.base = newCharmLogger(out, level, timestamps)
	return logger
}

// NewLoggerTo creates a logger writing to w. Used by tests and embedders.
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		level: level,
		mode:  "writer",
		out:   w,
		base:  newCharmLogger(w, level, true),
	}
}

func newCharmLogger(w io.Writer, level LogLevel, timestamps bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: timestamps,
		TimeFormat:      timeFormat,
		Level:           level.charm(),
	})
}

// init initializes the logger and performs log rotation
func (l *Logger) init() {
	if err := os.MkdirAll(l.logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		return
	}

	l.rotateLogs()

	currentLogPath := filepath.Join(l.logDir, "current.log")
	file, err := os.OpenFile(currentLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}

	l.currentLog = file
}

// rotateLogs shifts archive/arrange-N.log up by one, keeping eight files.
func (l *Logger) rotateLogs() {
	archiveDir := filepath.Join(l.logDir, "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return
	}

	currentLogPath := filepath.Join(l.logDir, "current.log")
	if _, err := os.Stat(currentLogPath); err != nil {
		return
	}

	for i := 7; i >= 1; i-- {
		oldPath := filepath.Join(archiveDir, fmt.Sprintf("arrange-%d.log", i))
		newPath := filepath.Join(archiveDir, fmt.Sprintf("arrange-%d.log", i+1))

		if i == 7 {
			os.Remove(newPath)
		}
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, newPath)
		}
	}

	os.Rename(currentLogPath, filepath.Join(archiveDir, "arrange-1.log"))
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	threshold := l.level
	l.mu.Unlock()
	if level < threshold {
		return
	}

	switch level {
	case DEBUG:
		l.base.Debugf(format, args...)
	case INFO:
		l.base.Infof(format, args...)
	case WARN:
		l.base.Warnf(format, args...)
	case ERROR:
		l.base.Errorf(format, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// WithPrefix returns a child logger tagging every line with prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Logger{
		level:      l.level,
		logDir:     l.logDir,
		currentLog: l.currentLog,
		mode:       l.mode,
		out:        l.out,
		base:       l.base.WithPrefix(prefix),
	}
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentLog != nil {
		err := l.currentLog.Close()
		l.currentLog = nil
		return err
	}
	return nil
}

// ListLogFiles returns a list of all log files
func (l *Logger) ListLogFiles() []string {
	files := []string{}
	if l.logDir == "" {
		return files
	}

	currentLogPath := filepath.Join(l.logDir, "current.log")
	if _, err := os.Stat(currentLogPath); err == nil {
		files = append(files, currentLogPath)
	}

	archiveDir := filepath.Join(l.logDir, "archive")
	if entries, err := os.ReadDir(archiveDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(archiveDir, entry.Name()))
			}
		}
	}

	return files
}
