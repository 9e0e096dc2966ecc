package feed

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkExtractor finds crawlable anchors in newsletter HTML.
type LinkExtractor struct{}

func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// Run returns the absolute http(s) URLs of every a[href] in document order.
// Relative hrefs are resolved against baseURL; those that cannot be resolved
// and non-web schemes such as mailto: are dropped. Duplicates are kept.
func (e *LinkExtractor) Run(htmlBody, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		slog.Warn("Failed to parse newsletter HTML", "base_url", baseURL, "error", err)
		return nil
	}

	var base *url.URL
	if baseURL != "" {
		if parsed, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && parsed.IsAbs() {
			base = parsed
		}
	}

	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if absolute, ok := e.resolve(base, href); ok {
			links = append(links, absolute)
		}
	})

	return links
}

func (e *LinkExtractor) resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		slog.Debug("Skipping unparseable href", "href", href, "error", err)
		return "", false
	}

	if !ref.IsAbs() {
		if base == nil {
			slog.Debug("Skipping relative href without base URL", "href", href)
			return "", false
		}
		ref = base.ResolveReference(ref)
	}

	if !isCrawlable(ref) {
		return "", false
	}

	return ref.String(), true
}

func isCrawlable(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
