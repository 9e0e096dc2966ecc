package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

var ErrQueueFull = errors.New("a run is already queued")

// TaskFactory builds a fresh task for each run.
type TaskFactory func() TaskInterface

// Scheduler runs one task at a time, on a fixed interval and on demand.
type Scheduler struct {
	newTask    TaskFactory
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
	mu         sync.RWMutex
	lastReport *RunReport
}

func NewScheduler(newTask TaskFactory, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		newTask:   newTask,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueScheduledRun()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueScheduledRun()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Scheduler) EnqueueRun() (TaskInterface, error) {
	task := s.newTask()
	if err := s.EnqueueTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Scheduler) LastReport() *RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

func (s *Scheduler) enqueueScheduledRun() {
	if _, err := s.EnqueueRun(); err != nil {
		slog.Debug("Scheduled run not enqueued", "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	err := task.Execute(s.ctx)
	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
	}

	if reporter, ok := task.(Reporter); ok {
		s.mu.Lock()
		s.lastReport = reporter.Report()
		s.mu.Unlock()
	}
}
