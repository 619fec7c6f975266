// Package shell implements the command execution engine: session state,
// command and group contracts, shell-style variable expansion, job tracking,
// and the pipeline dispatcher, plus a thin readline REPL host loop.
package shell

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"
)

// PipeInputVar is the reserved session variable through which a
// pipe-connected stage's output is handed to the next stage.
const PipeInputVar = "_pipe_input"

// varTable is the session variable bag. It is shared between a session and
// its background forks, so it carries its own lock.
type varTable struct {
	mu   sync.RWMutex
	vals map[string]string
}

// Session is the mutable execution context commands run against: I/O
// handles, session variables, working directory, and the exit code of the
// most recently completed stage.
//
// The dispatcher owns one session; background pipelines run on forks that
// share the variable bag but swap streams independently. Concurrent
// foreground and background mutation of the same variables is the
// application's race to avoid.
type Session struct {
	mu       sync.Mutex
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	vars     *varTable
	workDir  string
	lastExit int
	fgJob    *Job
	ctx      context.Context
}

// NewSession returns a session bound to the process's standard streams.
func NewSession() *Session {
	return NewSessionWith(os.Stdin, os.Stdout, os.Stderr)
}

// NewSessionWith returns a session bound to the given duplex handles.
func NewSessionWith(in io.Reader, out, errOut io.Writer) *Session {
	wd, _ := os.Getwd()
	return &Session{
		in:      in,
		out:     out,
		errOut:  errOut,
		vars:    &varTable{vals: make(map[string]string)},
		workDir: wd,
	}
}

// fork derives a session for a background pipeline: same variable bag and
// base streams, independent stream swapping and cancellation.
func (s *Session) fork(ctx context.Context) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Session{
		in:      s.in,
		out:     s.out,
		errOut:  s.errOut,
		vars:    s.vars,
		workDir: s.workDir,
		ctx:     ctx,
	}
}

// In returns the session input handle.
func (s *Session) In() io.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in
}

// Out returns the session output handle.
func (s *Session) Out() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out
}

// Err returns the session error handle.
func (s *Session) Err() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errOut
}

// SetIn replaces the session input handle.
func (s *Session) SetIn(in io.Reader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.in = in
}

// SetOut replaces the session output handle.
func (s *Session) SetOut(out io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = out
}

// SetErr replaces the session error handle.
func (s *Session) SetErr(errOut io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errOut = errOut
}

// Get returns a session variable.
func (s *Session) Get(name string) (string, bool) {
	s.vars.mu.RLock()
	defer s.vars.mu.RUnlock()
	val, ok := s.vars.vals[name]
	return val, ok
}

// Put sets a session variable.
func (s *Session) Put(name, value string) {
	s.vars.mu.Lock()
	defer s.vars.mu.Unlock()
	s.vars.vals[name] = value
}

// Unset removes a session variable.
func (s *Session) Unset(name string) {
	s.vars.mu.Lock()
	defer s.vars.mu.Unlock()
	delete(s.vars.vals, name)
}

// Vars returns a copy of the session variables.
func (s *Session) Vars() map[string]string {
	s.vars.mu.RLock()
	defer s.vars.mu.RUnlock()
	out := make(map[string]string, len(s.vars.vals))
	for k, v := range s.vars.vals {
		out[k] = v
	}
	return out
}

// VarNames returns the defined variable names, sorted.
func (s *Session) VarNames() []string {
	s.vars.mu.RLock()
	defer s.vars.mu.RUnlock()
	names := make([]string, 0, len(s.vars.vals))
	for name := range s.vars.vals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorkDir returns the session working directory.
func (s *Session) WorkDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workDir
}

// SetWorkDir sets the session working directory.
func (s *Session) SetWorkDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workDir = dir
}

// LastExitCode returns the exit code recorded for the most recently
// completed stage.
func (s *Session) LastExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExit
}

// SetLastExitCode records a stage exit code. The dispatcher sets 0 on a
// normal return and 1 on error; commands may overwrite it.
func (s *Session) SetLastExitCode(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastExit = code
}

// ForegroundJob returns the job of the currently executing foreground
// pipeline, or nil.
func (s *Session) ForegroundJob() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fgJob
}

// SetForegroundJob records the current foreground job.
func (s *Session) SetForegroundJob(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fgJob = job
}

// Context returns the cancellation context of the current execution.
// Commands performing blocking waits should honor it.
func (s *Session) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Session) setContext(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
}

func (s *Session) swapContext(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.ctx
	s.ctx = ctx
	return prev
}
