package internal

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/iksnae/research-chat/internal/classify"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = LogLevelInfo
	logger   = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})
)

func init() {
	classify.SetLogger(logDebug)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelWarn)
	}
}

// SetLogOutput redirects log output
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

func logError(format string, args ...interface{}) {
	if logLevel >= LogLevelError {
		logger.Errorf(format, args...)
	}
}

func logWarn(format string, args ...interface{}) {
	if logLevel >= LogLevelWarn {
		logger.Warnf(format, args...)
	}
}

func logInfo(format string, args ...interface{}) {
	if logLevel >= LogLevelInfo {
		logger.Infof(format, args...)
	}
}

func logDebug(format string, args ...interface{}) {
	if logLevel >= LogLevelDebug {
		logger.Debugf(format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logError(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logWarn(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logInfo(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logDebug(format, args...)
}
