package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger defines a standard interface for logging.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// LogrusLogger is a wrapper around a logrus entry.
type LogrusLogger struct {
	*logrus.Entry
}

// ParseLevel maps a level name onto a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger creates a new logger instance based on the specified level.
// Output goes to stderr so that stdout stays free for command output.
func NewLogger(level string, json bool) Logger {
	return New(os.Stderr, level, json)
}

// New creates a logger writing to w.
func New(w io.Writer, level string, json bool) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return &LogrusLogger{logrus.NewEntry(l)}
}

// With returns a logger that attaches the given field to every entry.
func With(log Logger, key string, value interface{}) Logger {
	if ll, ok := log.(*LogrusLogger); ok {
		return &LogrusLogger{ll.WithField(key, value)}
	}
	return log
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}
