package commands

import (
	"fmt"
	"strings"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pipesh/pipesh/core/shell"
)

// CoreGroup returns small general-purpose utilities: echo, pwd, cd, sleep.
func CoreGroup() shell.Group {
	return shell.NewGroup("core",
		echoCommand(),
		&shell.SimpleCommand{
			Use:   "pwd",
			Short: "Print the working directory.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				wd := sess.WorkDir()
				fmt.Fprintln(sess.Out(), wd)
				return wd, nil
			},
		},
		&shell.SimpleCommand{
			Use:   "cd",
			Short: "Change the working directory.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("cd: want exactly one directory")
				}
				sess.SetWorkDir(args[0])
				return nil, nil
			},
		},
		&shell.SimpleCommand{
			Use:   "sleep",
			Short: "Pause for a duration, honoring interruption.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("sleep: want a duration")
				}
				dur, err := time.ParseDuration(args[0])
				if err != nil {
					return nil, fmt.Errorf("sleep: %w", err)
				}
				timer := time.NewTimer(dur)
				defer timer.Stop()
				select {
				case <-timer.C:
					return nil, nil
				case <-sess.Context().Done():
					return nil, sess.Context().Err()
				}
			},
		},
	)
}

func echoCommand() shell.Command {
	meta := &flagCommand{
		Use:   "echo [-n] [ARG]...",
		Short: "Print arguments to the output stream.",
	}
	return &shell.SimpleCommand{
		Use:   "echo",
		Names: []string{"print"},
		Short: meta.Short,
		Exec: func(sess *shell.Session, args []string) (any, error) {
			var noNewline bool
			return meta.run(sess, args, func(opts *getopt.Set) {
				opts.FlagLong(&noNewline, "no-newline", 'n', "do not print the trailing newline")
			}, func(args []string) (any, error) {
				line := strings.Join(args, " ")
				if noNewline {
					fmt.Fprint(sess.Out(), line)
				} else {
					fmt.Fprintln(sess.Out(), line)
				}
				return line, nil
			})
		},
	}
}
