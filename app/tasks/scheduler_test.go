package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTask records executions and optionally blocks until released.
type mockTask struct {
	Task
	executions *atomic.Int32
	release    chan struct{}
	err        error
	report     *RunReport
}

func (m *mockTask) Execute(ctx context.Context) error {
	m.executions.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.report.FinishedAt = time.Now()
	m.report.Err = m.err
	return m.err
}

func (m *mockTask) Report() *RunReport {
	return m.report
}

func newMockFactory(executions *atomic.Int32, release chan struct{}, err error) TaskFactory {
	return func() TaskInterface {
		task := NewTask(TaskTypeBuildFeed)
		return &mockTask{
			Task:       task,
			executions: executions,
			release:    release,
			err:        err,
			report:     &RunReport{TaskID: task.ID, StartedAt: time.Now()},
		}
	}
}

func TestSchedulerRunsOnStartup(t *testing.T) {
	var executions atomic.Int32
	scheduler := NewScheduler(newMockFactory(&executions, nil, nil), time.Hour)

	scheduler.Start()
	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		return scheduler.LastReport() != nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), executions.Load())
	assert.True(t, scheduler.LastReport().Succeeded())
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	var executions atomic.Int32
	scheduler := NewScheduler(newMockFactory(&executions, nil, nil), 20*time.Millisecond)

	scheduler.Start()
	defer scheduler.Stop()

	assert.Eventually(t, func() bool {
		return executions.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerQueuesAtMostOneRun(t *testing.T) {
	var executions atomic.Int32
	release := make(chan struct{})
	scheduler := NewScheduler(newMockFactory(&executions, release, nil), time.Hour)

	scheduler.Start()
	defer scheduler.Stop()

	// Wait for the startup run to be picked up by the worker.
	require.Eventually(t, func() bool {
		return executions.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := scheduler.EnqueueRun()
	require.NoError(t, err)

	_, err = scheduler.EnqueueRun()
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)

	assert.Eventually(t, func() bool {
		return executions.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRecordsFailedRuns(t *testing.T) {
	var executions atomic.Int32
	scheduler := NewScheduler(newMockFactory(&executions, nil, errors.New("disk full")), time.Hour)

	scheduler.Start()
	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		return scheduler.LastReport() != nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, scheduler.LastReport().Succeeded())
	assert.EqualError(t, scheduler.LastReport().Err, "disk full")
}

func TestSchedulerRejectsAfterStop(t *testing.T) {
	var executions atomic.Int32
	scheduler := NewScheduler(newMockFactory(&executions, nil, nil), time.Hour)

	scheduler.Start()
	scheduler.Stop()

	_, err := scheduler.EnqueueRun()
	assert.ErrorIs(t, err, context.Canceled)
}
