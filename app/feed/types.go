package feed

import (
	"time"
)

// Source feed types

type Metadata struct {
	Title string
	Link  string
}

// SourceEntry is one newsletter issue read from the source feed.
type SourceEntry struct {
	Title       string
	Link        string // base URL for resolving relative hrefs
	HTMLBody    string
	PublishedAt *time.Time
}

// ExtractedLink is an absolute URL found in a newsletter body.
type ExtractedLink struct {
	AbsoluteURL      string
	SourceEntryTitle string
}

// Output feed types

type ChannelMetadata struct {
	Title       string
	Link        string
	Description string
	SelfLink    string
}

// OutputItem is one link in the generated feed. GUID always equals Link.
type OutputItem struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time
}

// SkipReason explains why a link or entry produced no output item.
type SkipReason string

const (
	ReasonNone       SkipReason = ""
	ReasonTimeout    SkipReason = "timeout"
	ReasonFetchError SkipReason = "fetch_error"
	ReasonBadStatus  SkipReason = "bad_status"
	ReasonNoTitle    SkipReason = "no_title"
	ReasonParseError SkipReason = "parse_error"
	ReasonDuplicate  SkipReason = "duplicate"
	ReasonLinkBudget SkipReason = "link_budget"
	ReasonNoBody     SkipReason = "no_body"
	ReasonFiltered   SkipReason = "filtered"
)

// TitleResult is the outcome of a single title fetch. Title is non-empty
// exactly when Reason is ReasonNone.
type TitleResult struct {
	URL        string
	Title      string
	StatusCode int
	Body       []byte // decoded page HTML, kept only on success
	Reason     SkipReason
	Err        error
}

func (r TitleResult) OK() bool {
	return r.Reason == ReasonNone && r.Title != ""
}
