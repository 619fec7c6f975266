package shell

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// ScriptRunner feeds a file of lines through a dispatcher. Blank lines and
// # comments are skipped, and a trailing backslash continues a line.
type ScriptRunner struct {
	dispatcher *Dispatcher
	fs         afero.Fs
}

// NewScriptRunner returns a runner reading scripts from the dispatcher's
// filesystem.
func NewScriptRunner(d *Dispatcher) *ScriptRunner {
	return &ScriptRunner{dispatcher: d, fs: d.fs}
}

// Run executes each line of the script in order. The first failing line
// stops the run and is reported with its position.
func (r *ScriptRunner) Run(path string) error {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	pending := ""
	start := 0
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if pending == "" {
			start = i + 1
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
		}
		if strings.HasSuffix(line, `\`) && !strings.HasSuffix(line, `\\`) {
			pending += strings.TrimSuffix(line, `\`)
			continue
		}
		full := pending + line
		pending = ""
		if _, err := r.dispatcher.Execute(full); err != nil {
			return fmt.Errorf("%s:%d: %w", path, start, err)
		}
	}
	if pending != "" {
		if _, err := r.dispatcher.Execute(pending); err != nil {
			return fmt.Errorf("%s:%d: %w", path, start, err)
		}
	}
	return nil
}
