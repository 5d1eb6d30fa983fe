package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// OutputFileEnv names the file step outputs are appended to.
const OutputFileEnv = "GITHUB_OUTPUT"

// Runtime writes step outputs and failure annotations for a workflow runner.
type Runtime struct {
	Stdout     io.Writer
	OutputPath string
}

func NewRuntime() *Runtime {
	return &Runtime{
		Stdout:     os.Stdout,
		OutputPath: os.Getenv(OutputFileEnv),
	}
}

// SetOutput records a step output. Without an output file it falls back to
// the legacy set-output command.
func (r *Runtime) SetOutput(name, value string) error {
	if r.OutputPath == "" {
		_, err := fmt.Fprintf(r.stdout(), "::set-output name=%s::%s\n", escapeProperty(name), escapeData(value))
		return err
	}

	var line string
	if strings.ContainsAny(value, "\r\n") {
		delimiter := "ghadelimiter_" + uuid.New().String()
		line = fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	} else {
		line = fmt.Sprintf("%s=%s\n", name, value)
	}

	f, err := os.OpenFile(r.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}

// SetFailed emits an error annotation. The caller decides the exit code.
func (r *Runtime) SetFailed(message string) {
	fmt.Fprintf(r.stdout(), "::error::%s\n", escapeData(message))
}

func (r *Runtime) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	return strings.ReplaceAll(s, ",", "%2C")
}
