package rvf

import (
	"github.com/rvflabs/rvf-go/pkg/internal/logger"
)

// LogLevel represents logging level
type LogLevel int

const (
	// LevelDebug shows all log messages (most verbose)
	LevelDebug LogLevel = iota
	// LevelInfo shows info, warn, and error messages (default)
	LevelInfo
	// LevelWarn shows warn and error messages
	LevelWarn
	// LevelError shows only error messages
	LevelError
)

// SetLogLevel sets the global logging level
// Use this to enable/disable different levels of logging output
func SetLogLevel(level LogLevel) {
	logger.SetDefault(logger.NewDefaultLogger(logger.Level(level)))
}

// Logger is the logging interface consumed throughout the library.
// Applications construct one here and hand it to managers and
// receivers; the internal implementation stays unexported.
type Logger = logger.Logger

// NewLogger creates a console logger at the given level
func NewLogger(level LogLevel) Logger {
	return logger.NewDefaultLogger(logger.Level(level))
}

// NewNoOpLogger creates a logger that discards everything
func NewNoOpLogger() Logger {
	return logger.NewNoOpLogger()
}

// SetDefaultLogger replaces the library-wide default logger
func SetDefaultLogger(log Logger) {
	logger.SetDefault(log)
}
