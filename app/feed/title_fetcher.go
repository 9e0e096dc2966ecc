package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

const maxPageSize = 5 << 20

type TitleFetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewTitleFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *TitleFetcher {
	return &TitleFetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Run issues one GET and scrapes the page's <title>. A title is returned only
// for a 200 response whose first title element has non-empty text; every
// other outcome carries a skip reason.
func (f *TitleFetcher) Run(ctx context.Context, url string) TitleResult {
	result := TitleResult{URL: url}

	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return f.skip(result, ReasonFetchError, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return f.skip(result, classifyFetchError(err), fmt.Errorf("failed to fetch URL: %w", err))
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		return f.skip(result, ReasonBadStatus, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return f.skip(result, classifyFetchError(err), fmt.Errorf("failed to read response body: %w", err))
	}

	body, err := decodeBody(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return f.skip(result, ReasonParseError, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return f.skip(result, ReasonParseError, fmt.Errorf("failed to parse HTML: %w", err))
	}

	title := cleanTitle(doc.Find("title").First().Text())
	if title == "" {
		return f.skip(result, ReasonNoTitle, errors.New("page has no title"))
	}

	result.Title = title
	result.Body = body
	return result
}

func (f *TitleFetcher) skip(result TitleResult, reason SkipReason, err error) TitleResult {
	result.Reason = reason
	result.Err = err
	return result
}

// decodeBody converts the page to UTF-8 using the Content-Type header, a
// <meta charset> declaration or content sniffing, in that order.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}

	return decoded, nil
}

func cleanTitle(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func classifyFetchError(err error) SkipReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	return ReasonFetchError
}
