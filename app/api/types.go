package api

import (
	"github.com/lysyi3m/link-comb/app/tasks"
)

type Handler struct {
	scheduler  tasks.TaskSchedulerInterface
	outputPath string
	version    string
}
