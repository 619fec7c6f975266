package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
)

// ShellConfig carries the host-facing knobs of the interactive loop.
type ShellConfig struct {
	// Prompt is the prompt template. \w expands to the working directory.
	Prompt string
	// HistoryFile persists line history across runs when non-empty.
	HistoryFile string
	// InitScript runs through the dispatcher before the first prompt.
	InitScript string
	// MOTD prints once at startup.
	MOTD string
}

const defaultPrompt = `pipesh:\w$ `

// Shell is the interactive line loop over a dispatcher: it reads lines,
// executes them, reports finished background jobs before each prompt, and
// maps Ctrl-C onto foreground interruption.
type Shell struct {
	dispatcher *Dispatcher
	config     ShellConfig
	rl         *readline.Instance
	listener   int

	mu       sync.Mutex
	finished []*Job
	stopped  bool
}

// NewShell builds a shell over the dispatcher's session streams.
func NewShell(d *Dispatcher, config ShellConfig) (*Shell, error) {
	if config.Prompt == "" {
		config.Prompt = defaultPrompt
	}
	sess := d.Session()
	cfg := &readline.Config{
		Stdin:       readline.NewCancelableStdin(sess.In()),
		Stdout:      sess.Out(),
		Stderr:      sess.Err(),
		HistoryFile: config.HistoryFile,
		AutoComplete: &commandCompleter{
			dispatcher: d,
		},
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	s := &Shell{
		dispatcher: d,
		config:     config,
		rl:         rl,
	}
	if jobs := d.JobManager(); jobs != nil {
		s.listener = jobs.AddListener(func(job *Job, previous, current Status) {
			if current == StatusDone && previous == StatusBackground {
				s.mu.Lock()
				s.finished = append(s.finished, job)
				s.mu.Unlock()
			}
		})
	}
	return s, nil
}

// Prompt renders the prompt template against the current session.
func (s *Shell) Prompt() string {
	return strings.ReplaceAll(s.config.Prompt, `\w`, s.dispatcher.Session().WorkDir())
}

// Run reads and dispatches lines until EOF or an exit command. Ctrl-C
// interrupts the foreground pipeline without leaving the loop.
func (s *Shell) Run() {
	sess := s.dispatcher.Session()
	if s.config.MOTD != "" {
		fmt.Fprintln(sess.Out(), s.config.MOTD)
	}
	if s.config.InitScript != "" {
		runner := NewScriptRunner(s.dispatcher)
		if err := runner.Run(s.config.InitScript); err != nil {
			log.Printf("init script: %v", err)
		}
	}

	for {
		if s.isStopped() {
			return
		}
		s.reportFinished()
		s.rl.SetPrompt(s.Prompt())
		line, err := s.rl.Readline()

		switch {
		case err == io.EOF:
			return

		case err == readline.ErrInterrupt:
			s.dispatcher.InterruptCurrent()
			continue

		case err != nil:
			if s.isStopped() {
				return
			}
			log.Printf("readline: %v", err)
			continue

		case strings.TrimSpace(line) == "":
			continue
		}

		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return
		}

		// Commands write their own output; the result value is for
		// embedders driving the dispatcher directly.
		if _, err := s.dispatcher.Execute(line); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(sess.Err(), err)
		}
		s.dispatcher.CleanUp()
	}
}

// Stop makes Run return after the current iteration, unblocking a
// pending read.
func (s *Shell) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.rl.Close()
}

func (s *Shell) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// reportFinished prints background jobs that completed since the last
// prompt and drops them from the job table.
func (s *Shell) reportFinished() {
	s.mu.Lock()
	finished := s.finished
	s.finished = nil
	s.mu.Unlock()

	jobs := s.dispatcher.JobManager()
	out := s.dispatcher.Session().Out()
	done := color.New(color.FgGreen).Sprint("Done")
	for _, job := range finished {
		fmt.Fprintf(out, "[%d]  %s\t%s\n", job.ID(), done, job.Command())
		if jobs != nil {
			jobs.Remove(job)
		}
	}
}

// Close releases the line editor and the job listener.
func (s *Shell) Close() error {
	if jobs := s.dispatcher.JobManager(); jobs != nil && s.listener != 0 {
		jobs.RemoveListener(s.listener)
	}
	return s.rl.Close()
}

// commandCompleter completes the first word of a line from the
// dispatcher's registered commands, then defers to per-command completers.
type commandCompleter struct {
	dispatcher *Dispatcher
}

func (c *commandCompleter) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	words := strings.Fields(head)
	endsWithSpace := strings.HasSuffix(head, " ")

	if len(words) == 0 || (len(words) == 1 && !endsWithSpace) {
		prefix := ""
		if len(words) == 1 {
			prefix = words[0]
		}
		var out [][]rune
		for _, cand := range c.dispatcher.Candidates() {
			if strings.HasPrefix(cand.Value, prefix) {
				out = append(out, []rune(cand.Value[len(prefix):]))
			}
		}
		return out, len(prefix)
	}

	cmd := c.dispatcher.FindCommand(words[0])
	provider, ok := cmd.(CompleterProvider)
	if !ok {
		return nil, 0
	}
	word := ""
	if !endsWithSpace {
		word = words[len(words)-1]
	}
	var out [][]rune
	for _, complete := range provider.Completers() {
		for _, cand := range complete(word) {
			if strings.HasPrefix(cand, word) {
				out = append(out, []rune(cand[len(word):]))
			}
		}
	}
	return out, len(word)
}
