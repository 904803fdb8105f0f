// Package util provides helper functions for logging events
package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log levels
const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

var logger = logrus.New()

// SetupLogger configures the shared logger. Debug mode lowers the level to debug.
func SetupLogger(debug bool) {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// Logger returns the shared logger for structured fields.
func Logger() *logrus.Logger { return logger }

// Debug prints diagnostic messages, shown only in debug mode.
func Debug(msg string, args ...any) { logger.Debugf(msg, args...) }

// Info prints general system information messages.
func Info(msg string, args ...any) { logger.Infof(msg, args...) }

// Warn prints recoverable problems.
func Warn(msg string, args ...any) { logger.Warnf(msg, args...) }

// Error prints error messages.
func Error(msg string, args ...any) { logger.Errorf(msg, args...) }
