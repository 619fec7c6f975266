package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/pipesh/pipesh/core/shell"
)

// JobsGroup returns the job control builtins bound to a manager.
func JobsGroup(jobs *shell.JobManager) shell.Group {
	return shell.NewGroup("jobs",
		&shell.SimpleCommand{
			Use:   "jobs",
			Short: "List tracked jobs.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				w := tabwriter.NewWriter(sess.Out(), 0, 8, 2, ' ', 0)
				for _, job := range jobs.Jobs() {
					fmt.Fprintf(w, "[%d]\t%s\t%s\n", job.ID(), statusLabel(job.Status()), job.Command())
				}
				return nil, w.Flush()
			},
		},
		&shell.SimpleCommand{
			Use:   "fg",
			Short: "Bring a job to the foreground and wait for it.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				job, err := pickJob(jobs, args)
				if err != nil {
					return nil, err
				}
				job.Resume(true)
				if err := job.Wait(sess.Context()); err != nil {
					return nil, err
				}
				return nil, nil
			},
			Complete: []shell.Completer{jobIDs(jobs)},
		},
		&shell.SimpleCommand{
			Use:   "bg",
			Short: "Resume a suspended job in the background.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				job, err := pickJob(jobs, args)
				if err != nil {
					return nil, err
				}
				job.Resume(false)
				return nil, nil
			},
			Complete: []shell.Completer{jobIDs(jobs)},
		},
		&shell.SimpleCommand{
			Use:   "stop",
			Short: "Interrupt a running job.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				job, err := pickJob(jobs, args)
				if err != nil {
					return nil, err
				}
				job.Interrupt()
				return nil, nil
			},
			Complete: []shell.Completer{jobIDs(jobs)},
		},
	)
}

// pickJob resolves an optional job id argument, defaulting to the most
// recently created background or suspended job. The foreground job of the
// line invoking fg/bg/stop is itself tracked, so the default must never
// resolve to it.
func pickJob(jobs *shell.JobManager, args []string) (*shell.Job, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("want at most one job id")
	}
	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("bad job id %q", args[0])
		}
		job := jobs.Get(id)
		if job == nil {
			return nil, fmt.Errorf("no such job: %d", id)
		}
		return job, nil
	}
	all := jobs.Jobs()
	for i := len(all) - 1; i >= 0; i-- {
		switch all[i].Status() {
		case shell.StatusBackground, shell.StatusSuspended:
			return all[i], nil
		}
	}
	return nil, fmt.Errorf("no active jobs")
}

func statusLabel(status shell.Status) string {
	switch status {
	case shell.StatusForeground, shell.StatusBackground:
		return color.GreenString(status.String())
	case shell.StatusSuspended:
		return color.YellowString(status.String())
	default:
		return status.String()
	}
}

func jobIDs(jobs *shell.JobManager) shell.Completer {
	return func(word string) []string {
		var out []string
		for _, job := range jobs.Jobs() {
			out = append(out, strconv.Itoa(job.ID()))
		}
		return out
	}
}
