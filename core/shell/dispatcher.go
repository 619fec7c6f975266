package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	shlex "github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"

	"github.com/pipesh/pipesh/core/alias"
	"github.com/pipesh/pipesh/core/pipeline"
)

// Dispatcher turns input lines into pipelines and executes them against the
// registered command groups, honoring the operators' control flow: pipes
// hand output forward, && and || gate on the previous exit code, and
// redirects materialize captured output onto the filesystem.
type Dispatcher struct {
	session  *Session
	parser   *pipeline.Parser
	aliases  *alias.Manager
	expander *Expander
	jobs     *JobManager
	fs       afero.Fs
	trace    func(error)
	cleanUp  func()

	mu      sync.Mutex
	groups  []Group
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewDispatcher returns a dispatcher owning the given session. A nil session
// gets one bound to the process streams. Parser, expander, filesystem, and
// error tracing have working defaults; alias expansion and job tracking are
// off until a manager is attached.
func NewDispatcher(session *Session) *Dispatcher {
	if session == nil {
		session = NewSession()
	}
	d := &Dispatcher{
		session:  session,
		parser:   pipeline.NewParser(),
		expander: &Expander{},
		fs:       afero.NewOsFs(),
	}
	d.trace = func(err error) {
		fmt.Fprintln(d.session.Err(), err)
	}
	return d
}

// Session returns the dispatcher's session.
func (d *Dispatcher) Session() *Session { return d.session }

// SetParser replaces the pipeline parser, typically one built with a custom
// operator table.
func (d *Dispatcher) SetParser(p *pipeline.Parser) {
	if p != nil {
		d.parser = p
	}
}

// SetAliasManager attaches alias expansion to incoming lines.
func (d *Dispatcher) SetAliasManager(m *alias.Manager) { d.aliases = m }

// AliasManager returns the attached alias manager, or nil.
func (d *Dispatcher) AliasManager() *alias.Manager { return d.aliases }

// SetExpander replaces the variable expander.
func (d *Dispatcher) SetExpander(x *Expander) {
	if x != nil {
		d.expander = x
	}
}

// SetJobManager attaches job tracking to pipeline executions.
func (d *Dispatcher) SetJobManager(m *JobManager) { d.jobs = m }

// JobManager returns the attached job manager, or nil.
func (d *Dispatcher) JobManager() *JobManager { return d.jobs }

// SetFs replaces the filesystem redirects and input files resolve against.
func (d *Dispatcher) SetFs(fs afero.Fs) {
	if fs != nil {
		d.fs = fs
	}
}

// SetTrace replaces the command error sink. The default prints to the
// session's error stream.
func (d *Dispatcher) SetTrace(fn func(error)) {
	if fn != nil {
		d.trace = fn
	}
}

// SetCleanUp installs a hook run by CleanUp.
func (d *Dispatcher) SetCleanUp(fn func()) { d.cleanUp = fn }

// AddGroup registers a command group. Later groups never shadow earlier
// ones.
func (d *Dispatcher) AddGroup(g Group) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups = append(d.groups, g)
}

// Groups returns the registered groups in registration order.
func (d *Dispatcher) Groups() []Group {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Group, len(d.groups))
	copy(out, d.groups)
	return out
}

// FindCommand resolves a name or alias across all groups in registration
// order. It returns nil when no group knows the name.
func (d *Dispatcher) FindCommand(name string) Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range d.groups {
		if cmd := g.Command(name); cmd != nil {
			return cmd
		}
	}
	return nil
}

// Candidate is one completion suggestion for the host line editor.
type Candidate struct {
	Value       string
	Group       string
	Description string
}

// Candidates lists every command name and alias across all groups.
func (d *Dispatcher) Candidates() []Candidate {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Candidate
	for _, g := range d.groups {
		for _, cmd := range g.Commands() {
			out = append(out, Candidate{Value: cmd.Name(), Group: g.Name(), Description: cmd.Description()})
			for _, a := range cmd.Aliases() {
				out = append(out, Candidate{Value: a, Group: g.Name(), Description: cmd.Description()})
			}
		}
	}
	return out
}

// Execute runs one input line: alias expansion, variable expansion, parsing,
// then pipeline execution. A blank line is a successful no-op. Background
// pipelines return immediately with a nil result.
func (d *Dispatcher) Execute(line string) (any, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}
	if d.aliases != nil {
		line = d.aliases.Expand(line)
	}
	expanded, err := d.expander.Expand(line, d.session)
	if err != nil {
		return nil, err
	}
	return d.ExecutePipeline(d.parser.Parse(expanded))
}

// ExecutePipeline runs an already-parsed pipeline. The result is the result
// of the last stage that actually ran; errors inside commands are traced and
// gate subsequent stages rather than aborting, while resolution and I/O
// wiring failures abort the pipeline and are returned. Interruption returns
// the canceled context's error.
//
// A command may dispatch lines of its own; such nested pipelines run under
// the enclosing pipeline's context and job, so InterruptCurrent stops the
// whole foreground execution, not just the innermost line.
func (d *Dispatcher) ExecutePipeline(p pipeline.Pipeline) (any, error) {
	if p.Background {
		d.executeBackground(p)
		return nil, nil
	}

	ctx, cancel := context.WithCancel(d.session.Context())
	defer cancel()
	if d.registerCancel(cancel) {
		defer d.setCancel(nil)

		if d.jobs != nil {
			job := d.jobs.Create(p.Source, cancel, StatusForeground)
			d.session.SetForegroundJob(job)
			defer func() {
				d.jobs.Complete(job)
				d.session.SetForegroundJob(nil)
			}()
		}
	}
	return d.run(ctx, d.session, p)
}

// executeBackground launches a pipeline on a forked session. The job stays
// listed after completion so its result can be inspected with jobs builtins
// until removed.
func (d *Dispatcher) executeBackground(p pipeline.Pipeline) {
	ctx, cancel := context.WithCancel(context.Background())
	var job *Job
	if d.jobs != nil {
		job = d.jobs.Create(p.Source, cancel, StatusBackground)
	}
	sess := d.session.fork(ctx)
	d.running.Add(1)
	go func() {
		defer d.running.Done()
		defer cancel()
		if _, err := d.run(ctx, sess, p); err != nil {
			d.trace(err)
		}
		if job != nil {
			d.jobs.Complete(job)
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, sess *Session, p pipeline.Pipeline) (any, error) {
	prev := sess.swapContext(ctx)
	defer sess.setContext(prev)

	var lastResult any
	lastOutput := ""
	hasOutput := false

	for i, stage := range p.Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(stage.Command) == "" {
			continue
		}
		if i > 0 {
			switch p.Stages[i-1].Op {
			case pipeline.OpAnd:
				if sess.LastExitCode() != 0 {
					continue
				}
			case pipeline.OpOr:
				if sess.LastExitCode() == 0 {
					continue
				}
			}
		}

		words := splitArgs(stage.Command)
		if len(words) == 0 {
			continue
		}
		name, args := words[0], words[1:]

		if i > 0 && hasOutput {
			switch p.Stages[i-1].Op {
			case pipeline.OpPipe:
				sess.Put(PipeInputVar, strings.TrimSpace(lastOutput))
			case pipeline.OpFlip:
				args = append(args, strings.TrimSpace(lastOutput))
			}
		}

		cmd := d.FindCommand(name)
		if cmd == nil {
			return nil, fmt.Errorf("unknown command: %s", name)
		}
		if router, ok := cmd.(SubcommandRouter); ok && len(args) > 0 {
			if sub := router.Subcommands()[args[0]]; sub != nil {
				cmd = sub
				args = args[1:]
			}
		}

		outBuf, errBuf := wireCapture(sess, stage.Op)
		origIn := sess.In()
		var inFile afero.File
		if stage.InputSource != "" {
			f, err := d.fs.Open(stage.InputSource)
			if err != nil {
				restoreStreams(sess, outBuf, errBuf)
				return nil, fmt.Errorf("input redirect: %w", err)
			}
			inFile = f
			sess.SetIn(f)
		}

		result, err := invoke(ctx, sess, cmd, args)

		restoreStreams(sess, outBuf, errBuf)
		if inFile != nil {
			inFile.Close()
			sess.SetIn(origIn)
		}

		// Interruption aborts the pipeline rather than gating the next
		// stage, so enclosing dispatches stop too.
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		if err != nil {
			d.trace(err)
			sess.SetLastExitCode(1)
			lastResult = nil
			lastOutput = ""
			hasOutput = false
		} else {
			sess.SetLastExitCode(0)
			lastResult = result
			if outBuf != nil {
				lastOutput = outBuf.buf.String()
				hasOutput = true
			} else {
				lastOutput = ""
				hasOutput = false
			}
		}

		if stage.Op.OutputRedirect() && stage.RedirectTarget != "" {
			buf := outBuf
			if stage.Op == pipeline.OpStderrRedirect {
				buf = errBuf
			}
			if buf != nil {
				if werr := d.writeRedirect(stage.RedirectTarget, buf.buf.Bytes(), stage.Append); werr != nil {
					return nil, fmt.Errorf("redirect %s: %w", stage.RedirectTarget, werr)
				}
			}
			lastResult = nil
			lastOutput = ""
			hasOutput = false
		}
	}
	return lastResult, nil
}

// InterruptCurrent cancels the context of the currently executing foreground
// pipeline, if any. Background jobs are interrupted through their Job
// handles.
func (d *Dispatcher) InterruptCurrent() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// CleanUp runs the installed per-line cleanup hook. Without one it is a
// no-op; hosts call it after each dispatched line.
func (d *Dispatcher) CleanUp() {
	if d.cleanUp != nil {
		d.cleanUp()
	}
}

// Close interrupts the current foreground pipeline and waits for background
// pipelines to finish.
func (d *Dispatcher) Close() error {
	d.InterruptCurrent()
	d.running.Wait()
	return nil
}

func (d *Dispatcher) setCancel(cancel context.CancelFunc) {
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
}

// registerCancel installs cancel as the interrupt target and reports whether
// it did. An enclosing pipeline keeps the target; the nested pipeline stays
// interruptible because its context descends from the enclosing one.
func (d *Dispatcher) registerCancel(cancel context.CancelFunc) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return false
	}
	d.cancel = cancel
	return true
}

func (d *Dispatcher) writeRedirect(target string, data []byte, appendTo bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendTo {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := d.fs.OpenFile(target, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// capture pairs a buffer with the stream it displaced so the stream can be
// restored after the stage runs.
type capture struct {
	buf  *bytes.Buffer
	orig io.Writer
}

// wireCapture swaps buffers over the session streams an operator needs
// captured. A combined redirect shares one buffer between both streams to
// keep output interleaved in write order.
func wireCapture(sess *Session, op pipeline.Operator) (outBuf, errBuf *capture) {
	switch op {
	case pipeline.OpCombinedRedirect:
		shared := &bytes.Buffer{}
		outBuf = &capture{buf: shared, orig: sess.Out()}
		errBuf = &capture{buf: shared, orig: sess.Err()}
		sess.SetOut(shared)
		sess.SetErr(shared)
	case pipeline.OpPipe, pipeline.OpFlip, pipeline.OpRedirect, pipeline.OpAppend:
		outBuf = &capture{buf: &bytes.Buffer{}, orig: sess.Out()}
		sess.SetOut(outBuf.buf)
	case pipeline.OpStderrRedirect:
		errBuf = &capture{buf: &bytes.Buffer{}, orig: sess.Err()}
		sess.SetErr(errBuf.buf)
	}
	return outBuf, errBuf
}

func restoreStreams(sess *Session, outBuf, errBuf *capture) {
	if outBuf != nil {
		sess.SetOut(outBuf.orig)
	}
	if errBuf != nil {
		sess.SetErr(errBuf.orig)
	}
}

// invoke runs one command, converting a panic into an error so a misbehaving
// command fails its stage instead of tearing down the host.
func invoke(ctx context.Context, sess *Session, cmd Command, args []string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", cmd.Name(), r)
		}
	}()
	sess.setContext(ctx)
	return cmd.Execute(sess, args)
}

// splitArgs splits a stage command into words, honoring quotes. Lines shlex
// rejects fall back to whitespace splitting.
func splitArgs(command string) []string {
	words, err := shlex.Split(command, true)
	if err != nil {
		return strings.Fields(command)
	}
	return words
}
