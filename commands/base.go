// Package commands holds the builtin command groups that ship with the
// engine: alias management, session variables, job control, help, and
// script sourcing, plus a handful of core utilities.
package commands

import (
	"fmt"
	"io"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pipesh/pipesh/core/shell"
)

// flagCommand wraps getopt flag parsing in front of a builtin's body. Each
// invocation builds a fresh flag set so commands stay reentrant.
type flagCommand struct {
	Use   string
	Short string
}

// run parses args against the flags registered by setup and invokes body
// with the remaining positional arguments. A parse failure prints usage to
// the session's error stream and fails the stage.
func (c *flagCommand) run(sess *shell.Session, args []string, setup func(opts *getopt.Set), body func(args []string) (any, error)) (any, error) {
	opts := getopt.New()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")
	if setup != nil {
		setup(opts)
	}

	argv := append([]string{firstWord(c.Use)}, args...)
	if err := opts.Getopt(argv, nil); err != nil {
		fmt.Fprintf(sess.Err(), "error: %s\n\n", err)
		c.printHelp(sess.Err(), opts)
		return nil, err
	}
	if *showHelp {
		c.printHelp(sess.Out(), opts)
		return nil, nil
	}
	return body(opts.Args())
}

func (c *flagCommand) printHelp(w io.Writer, opts *getopt.Set) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, c.Use)
	fmt.Fprintln(w, c.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	opts.PrintOptions(w)
}

func firstWord(use string) string {
	if i := strings.IndexByte(use, ' '); i >= 0 {
		return use[:i]
	}
	return use
}

// All returns every builtin group wired against the dispatcher and its
// attached managers.
func All(d *shell.Dispatcher) []shell.Group {
	groups := []shell.Group{
		CoreGroup(),
		VarsGroup(),
		HelpGroup(d),
		ScriptGroup(d),
	}
	if aliases := d.AliasManager(); aliases != nil {
		groups = append(groups, AliasGroup(aliases))
	}
	if jobs := d.JobManager(); jobs != nil {
		groups = append(groups, JobsGroup(jobs))
	}
	return groups
}
