package shell

import (
	"context"
	"sort"
	"sync"
)

// Status is a job's lifecycle state.
type Status int

const (
	// StatusNone is never held by a live job; it appears only as the
	// previous status in a listener's first notification for a job.
	StatusNone Status = iota
	StatusForeground
	StatusBackground
	StatusSuspended
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusForeground:
		return "Foreground"
	case StatusBackground:
		return "Background"
	case StatusSuspended:
		return "Suspended"
	case StatusDone:
		return "Done"
	}
	return "None"
}

// JobListener observes job status transitions.
type JobListener func(job *Job, previous, current Status)

// Job tracks one dispatched pipeline execution.
type Job struct {
	id      int
	command string
	mgr     *JobManager
	cancel  context.CancelFunc
	status  Status // guarded by mgr.mu
	done    chan struct{}
}

// ID returns the small positive integer naming the job.
func (j *Job) ID() int { return j.id }

// Command returns the source line the job was created from.
func (j *Job) Command() string { return j.command }

// Status returns the job's current lifecycle state.
func (j *Job) Status() Status {
	j.mgr.mu.Lock()
	defer j.mgr.mu.Unlock()
	return j.status
}

// Interrupt cancels the job's execution context. Interruption is
// cooperative: the running command observes the context and unwinds on its
// own schedule. The status is not changed here.
func (j *Job) Interrupt() {
	if j.cancel != nil {
		j.cancel()
	}
}

// Suspend marks the job suspended. The engine performs no scheduling; the
// status is advisory and commands honoring it must check for themselves.
func (j *Job) Suspend() {
	j.mgr.transition(j, StatusSuspended)
}

// Resume marks the job running again, in the foreground or background.
func (j *Job) Resume(foreground bool) {
	if foreground {
		j.mgr.transition(j, StatusForeground)
		return
	}
	j.mgr.transition(j, StatusBackground)
}

// Wait blocks until the job completes or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finished reports whether the job has completed.
func (j *Job) Finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// JobManager tracks the jobs a dispatcher has launched and notifies
// listeners of status transitions. All methods are safe for concurrent use.
type JobManager struct {
	mu        sync.Mutex
	nextID    int
	jobs      []*Job
	index     map[int]*Job
	listeners map[int]JobListener
	nextToken int
	fg        *Job
}

// NewJobManager returns an empty manager.
func NewJobManager() *JobManager {
	return &JobManager{
		index:     make(map[int]*Job),
		listeners: make(map[int]JobListener),
	}
}

// Create registers a job for a pipeline about to run and notifies listeners
// of the initial transition from StatusNone.
func (m *JobManager) Create(command string, cancel context.CancelFunc, status Status) *Job {
	m.mu.Lock()
	m.nextID++
	job := &Job{
		id:      m.nextID,
		command: command,
		mgr:     m,
		cancel:  cancel,
		status:  status,
		done:    make(chan struct{}),
	}
	m.jobs = append(m.jobs, job)
	m.index[job.id] = job
	if status == StatusForeground {
		m.fg = job
	}
	fns := m.listenerSnapshot()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(job, StatusNone, status)
	}
	return job
}

// Complete marks a job done, wakes its waiters, and clears the foreground
// slot when the job held it. Completed jobs stay listed until removed.
func (m *JobManager) Complete(job *Job) {
	m.mu.Lock()
	if job.status == StatusDone {
		m.mu.Unlock()
		return
	}
	prev := job.status
	job.status = StatusDone
	if m.fg == job {
		m.fg = nil
	}
	close(job.done)
	fns := m.listenerSnapshot()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(job, prev, StatusDone)
	}
}

// Remove drops a job from the listing. Removing an unknown job is a no-op.
func (m *JobManager) Remove(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[job.id]; !ok {
		return
	}
	delete(m.index, job.id)
	for i, j := range m.jobs {
		if j == job {
			m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
			break
		}
	}
}

// Get returns the job with the given id, or nil.
func (m *JobManager) Get(id int) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index[id]
}

// Jobs returns a snapshot of all tracked jobs in creation order.
func (m *JobManager) Jobs() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Job, len(m.jobs))
	copy(out, m.jobs)
	return out
}

// ForegroundJob returns the job currently holding the foreground, or nil.
func (m *JobManager) ForegroundJob() *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fg
}

// AddListener registers a status listener and returns a handle for
// RemoveListener.
func (m *JobManager) AddListener(fn JobListener) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextToken++
	m.listeners[m.nextToken] = fn
	return m.nextToken
}

// RemoveListener unregisters a listener by its handle.
func (m *JobManager) RemoveListener(handle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, handle)
}

func (m *JobManager) transition(job *Job, next Status) {
	m.mu.Lock()
	prev := job.status
	if prev == next || prev == StatusDone {
		m.mu.Unlock()
		return
	}
	job.status = next
	if next == StatusForeground {
		m.fg = job
	} else if m.fg == job {
		m.fg = nil
	}
	fns := m.listenerSnapshot()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(job, prev, next)
	}
}

// listenerSnapshot copies the listener set so notifications run without the
// manager lock held. Callers must hold m.mu.
func (m *JobManager) listenerSnapshot() []JobListener {
	if len(m.listeners) == 0 {
		return nil
	}
	handles := make([]int, 0, len(m.listeners))
	for h := range m.listeners {
		handles = append(handles, h)
	}
	sort.Ints(handles)
	fns := make([]JobListener, 0, len(handles))
	for _, h := range handles {
		fns = append(fns, m.listeners[h])
	}
	return fns
}
