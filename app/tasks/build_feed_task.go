package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/link-comb/app/config"
	"github.com/lysyi3m/link-comb/app/feed"
	"github.com/lysyi3m/link-comb/app/metrics"
)

// BuildFeedTask performs one full pipeline run: read the source feed, crawl
// every newly seen link for its title and write the link feed. A task owns
// its seen set and output items, so each run starts from scratch.
type BuildFeedTask struct {
	Task
	Config           *config.PipelineConfig
	reader           *feed.Reader
	extractor        *feed.LinkExtractor
	filterer         *feed.Filterer
	titleFetcher     *feed.TitleFetcher
	contentExtractor *feed.ContentExtractor
	writer           *feed.Writer
	seen             *feed.SeenURLs
	delay            time.Duration
	fetched          int
	budgetWarned     bool
	report           *RunReport
}

func NewBuildFeedTask(pipelineConfig *config.PipelineConfig, httpClient *http.Client, contentExtractor *feed.ContentExtractor, generator *feed.Generator, selfLink string) *BuildFeedTask {
	settings := pipelineConfig.Settings
	timeout := settings.GetTimeout()

	channel := feed.ChannelMetadata{
		Title:       pipelineConfig.Output.Title,
		Link:        pipelineConfig.Output.Link,
		Description: pipelineConfig.Output.Description,
		SelfLink:    selfLink,
	}

	task := &BuildFeedTask{
		Task:             NewTask(TaskTypeBuildFeed),
		Config:           pipelineConfig,
		reader:           feed.NewReader(httpClient, feed.NewParser(), settings.UserAgent, timeout),
		extractor:        feed.NewLinkExtractor(),
		filterer:         feed.NewFilterer(pipelineConfig.Filters),
		titleFetcher:     feed.NewTitleFetcher(httpClient, settings.UserAgent, timeout),
		contentExtractor: contentExtractor,
		writer:           feed.NewWriter(channel, generator),
		seen:             feed.NewSeenURLs(),
		delay:            settings.GetDelay(),
	}
	task.report = &RunReport{
		TaskID:     task.ID,
		SourceURL:  pipelineConfig.Source.URL,
		OutputPath: pipelineConfig.Output.Path,
		Links:      make([]LinkResult, 0),
	}

	return task
}

func (t *BuildFeedTask) Report() *RunReport {
	return t.report
}

// Execute runs the pipeline. Source feed problems and per-link failures are
// logged and skipped; only a failure to write the output feed or a cancelled
// context makes the run fail.
func (t *BuildFeedTask) Execute(ctx context.Context) error {
	t.report.StartedAt = time.Now()

	select {
	case <-ctx.Done():
		return t.fail(ctx.Err())
	default:
	}

	slog.Info("Starting link extraction", "task_id", t.ID, "source", t.Config.Source.URL)

	source := t.reader.Run(ctx, t.Config.Source.URL)
	if source.Warning != nil {
		t.report.SourceWarning = source.Warning
		metrics.SourceFeedWarningsTotal.Inc()
	}
	t.report.EntriesSkipped = source.SkippedEntries
	metrics.EntriesTotal.WithLabelValues("skipped").Add(float64(source.SkippedEntries))

	for _, entry := range source.Entries {
		if err := t.processEntry(ctx, entry); err != nil {
			return t.fail(err)
		}
	}

	if err := t.writer.Serialize(t.Config.Output.Path); err != nil {
		slog.Error("Error generating RSS file", "path", t.Config.Output.Path, "error", err)
		return t.fail(fmt.Errorf("failed to write link feed: %w", err))
	}

	t.report.ItemsWritten = t.writer.Len()
	t.report.FinishedAt = time.Now()

	metrics.RunsTotal.WithLabelValues("success").Inc()
	metrics.RunDuration.Observe(t.report.Duration().Seconds())
	metrics.LastRunItems.Set(float64(t.report.ItemsWritten))
	metrics.LastSuccessTimestamp.Set(float64(t.report.FinishedAt.Unix()))

	slog.Info("Task completed",
		"type", t.GetType(),
		"path", t.Config.Output.Path,
		"duration", t.report.Duration(),
		"entries", t.report.EntriesProcessed,
		"links", t.report.LinksExtracted,
		"duplicates", t.report.Count(LinkDuplicate),
		"skipped", t.report.Count(LinkSkipped),
		"added", t.report.ItemsWritten)

	return nil
}

func (t *BuildFeedTask) processEntry(ctx context.Context, entry feed.SourceEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	urls := t.extractor.Run(entry.HTMLBody, entry.Link)
	slog.Info("Processing newsletter", "newsletter", entry.Title, "links", len(urls))

	t.report.EntriesProcessed++
	t.report.LinksExtracted += len(urls)
	metrics.EntriesTotal.WithLabelValues("processed").Inc()

	for _, url := range urls {
		link := feed.ExtractedLink{AbsoluteURL: url, SourceEntryTitle: entry.Title}

		result, err := t.processLink(ctx, link, entry)
		if err != nil {
			return err
		}

		t.report.Links = append(t.report.Links, result)
		metrics.LinksTotal.WithLabelValues(string(result.Status), string(result.Reason)).Inc()
	}

	return nil
}

// processLink handles one candidate URL. The returned error is non-nil only
// when ctx was cancelled.
func (t *BuildFeedTask) processLink(ctx context.Context, link feed.ExtractedLink, entry feed.SourceEntry) (LinkResult, error) {
	result := LinkResult{URL: link.AbsoluteURL, EntryTitle: link.SourceEntryTitle}

	if t.seen.AlreadySeen(link.AbsoluteURL) {
		slog.Debug("Link already processed, skipping", "url", link.AbsoluteURL, "newsletter", link.SourceEntryTitle)
		result.Status = LinkDuplicate
		result.Reason = feed.ReasonDuplicate
		return result, nil
	}

	if isFiltered, reason := t.filterer.RunLink(link.AbsoluteURL); isFiltered {
		slog.Debug("Link filtered, skipping", "url", link.AbsoluteURL, "reason", reason)
		result.Status = LinkSkipped
		result.Reason = feed.ReasonFiltered
		return result, nil
	}

	if maxLinks := t.Config.Settings.MaxLinks; maxLinks > 0 && t.fetched >= maxLinks {
		if !t.budgetWarned {
			slog.Warn("Link budget reached, remaining links will be skipped", "max_links", maxLinks)
			t.budgetWarned = true
		}
		slog.Debug("Link over budget, skipping", "url", link.AbsoluteURL)
		result.Status = LinkSkipped
		result.Reason = feed.ReasonLinkBudget
		return result, nil
	}

	slog.Info("Crawling", "url", link.AbsoluteURL)
	title := t.titleFetcher.Run(ctx, link.AbsoluteURL)
	t.fetched++

	if err := t.pause(ctx); err != nil {
		return result, err
	}

	if !title.OK() {
		slog.Info("Could not get title, skipping",
			"url", link.AbsoluteURL,
			"newsletter", link.SourceEntryTitle,
			"reason", title.Reason,
			"status", title.StatusCode,
			"error", title.Err)
		result.Status = LinkSkipped
		result.Reason = title.Reason
		result.Err = title.Err
		return result, nil
	}

	item := feed.OutputItem{
		GUID:        link.AbsoluteURL,
		Title:       title.Title,
		Link:        link.AbsoluteURL,
		Description: fmt.Sprintf("Link found in newsletter: '%s'", link.SourceEntryTitle),
		PublishedAt: entry.PublishedAt,
	}

	if isFiltered, reason := t.filterer.Run(item); isFiltered {
		slog.Info("Item filtered, skipping", "url", link.AbsoluteURL, "title", title.Title, "reason", reason)
		result.Status = LinkSkipped
		result.Reason = feed.ReasonFiltered
		result.Title = title.Title
		return result, nil
	}

	if t.Config.Settings.ExtractContent && t.contentExtractor != nil {
		content, err := t.contentExtractor.Run(title.Body, link.AbsoluteURL)
		if err != nil {
			slog.Debug("Content extraction failed, keeping link without content", "url", link.AbsoluteURL, "error", err)
		} else {
			item.Content = content
		}
	}

	t.writer.AddItem(item)
	slog.Info("Added to feed", "title", title.Title, "url", link.AbsoluteURL)

	result.Status = LinkAdded
	result.Title = title.Title
	return result, nil
}

// pause sleeps for the configured delay after a fetch, whatever its outcome.
func (t *BuildFeedTask) pause(ctx context.Context) error {
	if t.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(t.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *BuildFeedTask) fail(err error) error {
	t.report.Err = err
	t.report.FinishedAt = time.Now()
	metrics.RunsTotal.WithLabelValues("failure").Inc()
	return err
}
