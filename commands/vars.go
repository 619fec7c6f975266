package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pipesh/pipesh/core/shell"
)

// VarsGroup returns the session variable builtins.
func VarsGroup() shell.Group {
	return shell.NewGroup("vars",
		&shell.SimpleCommand{
			Use:   "set",
			Short: "Set a session variable, or list them all.",
			Exec:  setCmd,
		},
		&shell.SimpleCommand{
			Use:   "unset",
			Short: "Remove session variables.",
			Exec:  unsetCmd,
		},
		&shell.SimpleCommand{
			Use:   "export",
			Short: "Copy a session variable into the process environment.",
			Exec:  exportCmd,
		},
	)
}

func setCmd(sess *shell.Session, args []string) (any, error) {
	if len(args) == 0 {
		w := tabwriter.NewWriter(sess.Out(), 0, 8, 2, ' ', 0)
		for _, name := range sess.VarNames() {
			val, _ := sess.Get(name)
			fmt.Fprintf(w, "%s\t%s\n", name, val)
		}
		return nil, w.Flush()
	}
	if name, value, ok := strings.Cut(args[0], "="); ok && name != "" {
		sess.Put(name, value)
		return nil, nil
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("set: want NAME VALUE or NAME=VALUE")
	}
	sess.Put(args[0], strings.Join(args[1:], " "))
	return nil, nil
}

func unsetCmd(sess *shell.Session, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("unset: variable name required")
	}
	for _, name := range args {
		sess.Unset(name)
	}
	return nil, nil
}

func exportCmd(sess *shell.Session, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("export: variable name required")
	}
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		if name == "" {
			return nil, fmt.Errorf("export: empty variable name")
		}
		if !hasValue {
			var ok bool
			value, ok = sess.Get(name)
			if !ok {
				return nil, fmt.Errorf("export: %s: not set", name)
			}
		} else {
			sess.Put(name, value)
		}
		if err := os.Setenv(name, value); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	return nil, nil
}
