package config

import (
	"time"
)

// GetTimeout returns the timeout as time.Duration
func (s *PipelineSettings) GetTimeout() time.Duration {
	if s.Timeout == nil {
		return DefaultTimeout * time.Second
	}
	return time.Duration(*s.Timeout) * time.Second
}

// GetDelay returns the post-fetch delay as time.Duration
func (s *PipelineSettings) GetDelay() time.Duration {
	if s.Delay == nil {
		return time.Duration(DefaultDelay * float64(time.Second))
	}
	return time.Duration(*s.Delay * float64(time.Second))
}
