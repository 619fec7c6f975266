package commands

import (
	"fmt"

	"github.com/pipesh/pipesh/core/shell"
)

// ScriptGroup returns the script sourcing builtin.
func ScriptGroup(d *shell.Dispatcher) shell.Group {
	return shell.NewGroup("script",
		&shell.SimpleCommand{
			Use:   "source",
			Names: []string{"."},
			Short: "Run a script of commands in the current session.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("source: want exactly one script path")
				}
				return nil, shell.NewScriptRunner(d).Run(args[0])
			},
		},
	)
}
