package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const maxFeedSize = 20 << 20

// ReadResult is the best-effort outcome of reading the source feed. Warning
// is set when the feed could not be fetched or parsed; Entries is then empty.
type ReadResult struct {
	Metadata       *Metadata
	Entries        []SourceEntry
	SkippedEntries int
	Warning        error
}

type Reader struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	timeout    time.Duration
}

func NewReader(httpClient *http.Client, parser *Parser, userAgent string, timeout time.Duration) *Reader {
	return &Reader{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Run fetches and parses the source feed. It never fails the run: fetch and
// parse errors are logged and reported as a warning with zero entries.
func (r *Reader) Run(ctx context.Context, feedURL string) ReadResult {
	slog.Info("Fetching source feed", "url", feedURL)

	data, err := r.fetchFeed(ctx, feedURL)
	if err != nil {
		slog.Warn("Source feed could not be fetched", "url", feedURL, "error", err)
		return ReadResult{Warning: err}
	}

	metadata, entries, err := r.parser.Run(data)
	if err != nil {
		slog.Warn("Source feed may be malformed", "url", feedURL, "error", err)
		return ReadResult{Warning: err}
	}

	result := ReadResult{
		Metadata: metadata,
		Entries:  make([]SourceEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		if entry.HTMLBody == "" {
			slog.Info("No content found in newsletter, skipping", "newsletter", entry.Title, "link", entry.Link)
			result.SkippedEntries++
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	slog.Debug("Source feed parsed",
		"title", metadata.Title,
		"entries", len(result.Entries),
		"skipped", result.SkippedEntries)

	return result
}

func (r *Reader) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/atom+xml, application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
