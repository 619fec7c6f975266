package shell

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobManagerCreateAssignsSequentialIDs(t *testing.T) {
	m := NewJobManager()

	a := m.Create("echo a", nil, StatusForeground)
	b := m.Create("echo b &", nil, StatusBackground)

	assert.Equal(t, 1, a.ID())
	assert.Equal(t, 2, b.ID())
	assert.Equal(t, "echo a", a.Command())
	assert.Equal(t, []*Job{a, b}, m.Jobs())
	assert.Same(t, a, m.Get(1))
	assert.Nil(t, m.Get(99))
}

func TestJobManagerForegroundTracking(t *testing.T) {
	m := NewJobManager()

	fg := m.Create("work", nil, StatusForeground)
	assert.Same(t, fg, m.ForegroundJob())

	m.Complete(fg)
	assert.Nil(t, m.ForegroundJob())
	assert.Equal(t, StatusDone, fg.Status())
}

func TestJobManagerCompleteWakesWaiters(t *testing.T) {
	m := NewJobManager()
	job := m.Create("work &", nil, StatusBackground)

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Complete(job)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, job.Wait(ctx))
	assert.True(t, job.Finished())
}

func TestJobManagerCompleteIsIdempotent(t *testing.T) {
	m := NewJobManager()
	job := m.Create("work", nil, StatusForeground)

	count := 0
	m.AddListener(func(job *Job, previous, current Status) {
		if current == StatusDone {
			count++
		}
	})

	m.Complete(job)
	m.Complete(job)
	assert.Equal(t, 1, count)
}

func TestJobWaitHonorsContext(t *testing.T) {
	m := NewJobManager()
	job := m.Create("stuck &", nil, StatusBackground)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := job.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, job.Finished())
}

func TestJobSuspendResume(t *testing.T) {
	m := NewJobManager()
	job := m.Create("work &", nil, StatusBackground)

	job.Suspend()
	assert.Equal(t, StatusSuspended, job.Status())

	job.Resume(true)
	assert.Equal(t, StatusForeground, job.Status())
	assert.Same(t, job, m.ForegroundJob())

	job.Resume(false)
	assert.Equal(t, StatusBackground, job.Status())
	assert.Nil(t, m.ForegroundJob())
}

func TestJobTransitionsStopAfterDone(t *testing.T) {
	m := NewJobManager()
	job := m.Create("work", nil, StatusForeground)
	m.Complete(job)

	job.Suspend()
	job.Resume(true)
	assert.Equal(t, StatusDone, job.Status())
}

func TestJobInterruptCancelsContext(t *testing.T) {
	m := NewJobManager()
	ctx, cancel := context.WithCancel(context.Background())
	job := m.Create("slow &", cancel, StatusBackground)

	job.Interrupt()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, StatusBackground, job.Status())
}

func TestJobListenerNotifications(t *testing.T) {
	m := NewJobManager()

	var seen []string
	m.AddListener(func(job *Job, previous, current Status) {
		seen = append(seen, previous.String()+">"+current.String())
	})

	job := m.Create("work &", nil, StatusBackground)
	job.Suspend()
	job.Resume(false)
	m.Complete(job)

	assert.Equal(t, []string{
		"None>Background",
		"Background>Suspended",
		"Suspended>Background",
		"Background>Done",
	}, seen)
}

func TestJobListenerRemoval(t *testing.T) {
	m := NewJobManager()

	count := 0
	handle := m.AddListener(func(job *Job, previous, current Status) {
		count++
	})

	m.Create("one", nil, StatusForeground)
	m.RemoveListener(handle)
	m.Create("two", nil, StatusForeground)

	assert.Equal(t, 1, count)
}

func TestJobManagerRemove(t *testing.T) {
	m := NewJobManager()
	a := m.Create("a", nil, StatusBackground)
	b := m.Create("b", nil, StatusBackground)

	m.Remove(a)
	assert.Equal(t, []*Job{b}, m.Jobs())
	assert.Nil(t, m.Get(a.ID()))

	m.Remove(a)
	assert.Equal(t, []*Job{b}, m.Jobs())
}
