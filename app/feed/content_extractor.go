package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/microcosm-cc/bluemonday"
)

type ContentExtractor struct {
	policy *bluemonday.Policy
}

func NewContentExtractor() *ContentExtractor {
	// UGCPolicy keeps basic formatting and links but drops scripts, styles and
	// event handlers.
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &ContentExtractor{policy: p}
}

// Run extracts the readable article body of an HTML page and returns it as
// sanitized HTML suitable for content:encoded.
func (e *ContentExtractor) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	var base *url.URL
	if parsed, err := url.Parse(pageURL); err == nil && parsed.IsAbs() {
		base = parsed
	}

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	var htmlBuf strings.Builder
	if err := article.RenderHTML(&htmlBuf); err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}

	content := strings.TrimSpace(e.policy.Sanitize(htmlBuf.String()))
	if content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"url", pageURL,
		"content_length", len(content))

	return content, nil
}
