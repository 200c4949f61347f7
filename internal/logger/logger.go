package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared structured logger. Every entry carries the
// service name so aggregated logs stay attributable.
var Logger *logrus.Logger

var base *logrus.Entry

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	// LOG_LEVEL accepts any logrus level name; unset or invalid means Info.
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	base = Logger.WithField("service", "solar-inspector")
}

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return base.WithFields(fields)
}

// WithField creates a new entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return base.WithField(key, value)
}

// WithError creates a new entry with an error field
func WithError(err error) *logrus.Entry {
	return base.WithError(err)
}

// Info logs an info message
func Info(msg string) {
	base.Info(msg)
}

// Error logs an error message
func Error(msg string) {
	base.Error(msg)
}

// Debug logs a debug message
func Debug(msg string) {
	base.Debug(msg)
}

// Warn logs a warning message
func Warn(msg string) {
	base.Warn(msg)
}
