package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/link-comb/app/tasks"
)

func NewHandler(scheduler tasks.TaskSchedulerInterface, outputPath, version string) *Handler {
	return &Handler{
		scheduler:  scheduler,
		outputPath: outputPath,
		version:    version,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	data, err := os.ReadFile(h.outputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Failed to read link feed", "path", h.outputPath, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if report := h.scheduler.LastReport(); report != nil && report.Succeeded() {
		c.Header("X-Feed-Items", strconv.Itoa(report.ItemsWritten))
		c.Header("X-Last-Updated", report.FinishedAt.Format(time.RFC3339))
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if report := h.scheduler.LastReport(); report != nil {
		lastRun := map[string]interface{}{
			"id":                report.TaskID,
			"started_at":        report.StartedAt.Format(time.RFC3339),
			"duration":          report.Duration().String(),
			"succeeded":         report.Succeeded(),
			"entries_processed": report.EntriesProcessed,
			"entries_skipped":   report.EntriesSkipped,
			"links_extracted":   report.LinksExtracted,
			"links_added":       report.Count(tasks.LinkAdded),
			"links_skipped":     report.Count(tasks.LinkSkipped),
			"links_duplicate":   report.Count(tasks.LinkDuplicate),
			"items_written":     report.ItemsWritten,
		}
		if report.SourceWarning != nil {
			lastRun["source_warning"] = report.SourceWarning.Error()
		}
		if report.Err != nil {
			lastRun["error"] = report.Err.Error()
			health["status"] = "degraded"
		}
		health["last_run"] = lastRun
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIRefresh(c *gin.Context) {
	task, err := h.scheduler.EnqueueRun()
	if err != nil {
		if errors.Is(err, tasks.ErrQueueFull) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Run already queued",
				"details": err.Error(),
			})
			return
		}
		slog.Error("Error enqueueing run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Run enqueued",
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}
