package tasks

import (
	"time"

	"github.com/lysyi3m/link-comb/app/feed"
)

type LinkStatus string

const (
	LinkAdded     LinkStatus = "added"
	LinkSkipped   LinkStatus = "skipped"
	LinkDuplicate LinkStatus = "duplicate"
)

// LinkResult is the outcome of processing one extracted link.
type LinkResult struct {
	URL        string
	EntryTitle string
	Status     LinkStatus
	Reason     feed.SkipReason
	Title      string
	Err        error
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	TaskID           string
	SourceURL        string
	OutputPath       string
	StartedAt        time.Time
	FinishedAt       time.Time
	SourceWarning    error
	EntriesProcessed int
	EntriesSkipped   int
	LinksExtracted   int
	Links            []LinkResult
	ItemsWritten     int
	Err              error
}

func (r *RunReport) Count(status LinkStatus) int {
	count := 0
	for _, link := range r.Links {
		if link.Status == status {
			count++
		}
	}
	return count
}

func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *RunReport) Succeeded() bool {
	return !r.FinishedAt.IsZero() && r.Err == nil
}
