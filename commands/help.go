package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/pipesh/pipesh/core/shell"
)

// HelpGroup returns the help builtin, rendering the dispatcher's registered
// groups and commands.
func HelpGroup(d *shell.Dispatcher) shell.Group {
	return shell.NewGroup("help",
		&shell.SimpleCommand{
			Use:   "help",
			Names: []string{"?"},
			Short: "List commands, or describe one.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				if len(args) == 0 {
					printOverview(sess, d)
					return nil, nil
				}
				cmd := d.FindCommand(args[0])
				if cmd == nil {
					return nil, fmt.Errorf("help: unknown command: %s", args[0])
				}
				if desc, ok := cmd.(shell.Describer); ok {
					fmt.Fprintln(sess.Out(), desc.Describe(args[1:]))
					return nil, nil
				}
				fmt.Fprintf(sess.Out(), "%s - %s\n", cmd.Name(), cmd.Description())
				return nil, nil
			},
			Complete: []shell.Completer{func(word string) []string {
				var out []string
				for _, cand := range d.Candidates() {
					out = append(out, cand.Value)
				}
				return out
			}},
		},
	)
}

func printOverview(sess *shell.Session, d *shell.Dispatcher) {
	heading := color.New(color.Bold)
	for _, g := range d.Groups() {
		heading.Fprintf(sess.Out(), "%s commands:\n", g.Name())
		w := tabwriter.NewWriter(sess.Out(), 0, 8, 2, ' ', 0)
		for _, cmd := range g.Commands() {
			name := cmd.Name()
			if aliases := cmd.Aliases(); len(aliases) > 0 {
				name += " (" + strings.Join(aliases, ", ") + ")"
			}
			fmt.Fprintf(w, "  %s\t%s\n", name, cmd.Description())
		}
		w.Flush()
		fmt.Fprintln(sess.Out())
	}
}
