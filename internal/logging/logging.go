// Package logging wires loggo for irgsh-publish and exposes the small Logger
// interface the publish components depend on.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/juju/loggo"
)

const rootModule = "irgsh.publish"

// Logger is satisfied by loggo.Logger.
type Logger interface {
	Debugf(message string, args ...interface{})
	Infof(message string, args ...interface{})
	Warningf(message string, args ...interface{})
	Errorf(message string, args ...interface{})
}

// GetLogger returns the loggo logger for a sub module, e.g. "usecase"
// becomes "irgsh.publish.usecase".
func GetLogger(name string) Logger {
	if name == "" {
		return loggo.GetLogger(rootModule)
	}
	return loggo.GetLogger(rootModule + "." + name)
}

// Setup replaces the default loggo writer and applies the given level to the
// root logger. An empty level means INFO.
func Setup(writer io.Writer, level string) error {
	if level == "" {
		level = "INFO"
	}
	parsed, ok := loggo.ParseLevel(strings.ToUpper(level))
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}

	if _, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(writer, formatter)); err != nil {
		return fmt.Errorf("failed to replace log writer: %w", err)
	}
	return loggo.ConfigureLoggers(fmt.Sprintf("<root>=%s", parsed.String()))
}

func formatter(entry loggo.Entry) string {
	ts := entry.Timestamp.In(time.UTC).Format("2006-01-02 15:04:05")
	if entry.Level >= loggo.WARNING {
		return fmt.Sprintf("%s %s %s", ts, entry.Level.String(), entry.Message)
	}
	return fmt.Sprintf("%s %s", ts, entry.Message)
}
