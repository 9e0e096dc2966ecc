package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application in serve mode and by the API refresh handler.
// Example usage:
//
//	scheduler := NewScheduler(taskFactory, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	task, err := scheduler.EnqueueRun()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueRun() (TaskInterface, error)
	LastReport() *RunReport
}
