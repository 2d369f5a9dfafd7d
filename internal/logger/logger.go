// Package logger builds the logrus logger shared by the dispatcher and the
// commands.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured or the configured one
// does not parse.
const DefaultLevel = logrus.WarnLevel

// New returns a text logger writing to out (stderr when nil) at the given
// level name.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	lg := logrus.New()
	lg.SetOutput(out)
	lg.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	lg.SetLevel(ParseLevel(level))
	return lg
}

// ParseLevel converts a level name, falling back to DefaultLevel.
func ParseLevel(level string) logrus.Level {
	if level == "" {
		return DefaultLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return DefaultLevel
	}
	return parsed
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(io.Discard)
	return lg
}
