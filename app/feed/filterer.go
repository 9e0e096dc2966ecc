package feed

import (
	"fmt"
	"strings"
)

// Filter keeps or drops output items by case-insensitive substring match.
type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

var FilterFields = map[string]bool{
	"title":       true,
	"link":        true,
	"description": true,
}

type Filterer struct {
	filters []Filter
}

func NewFilterer(filters []Filter) *Filterer {
	return &Filterer{filters: filters}
}

// RunLink applies only the link filters, so a URL can be rejected before it
// is fetched.
func (f *Filterer) RunLink(url string) (bool, string) {
	for _, filter := range f.filters {
		if filter.Field != "link" {
			continue
		}
		if isFiltered, reason := f.applyFilter(url, filter); isFiltered {
			return true, reason
		}
	}
	return false, ""
}

// Run reports whether item is filtered out and why.
func (f *Filterer) Run(item OutputItem) (bool, string) {
	for _, filter := range f.filters {
		if isFiltered, reason := f.applyFilter(f.getFieldValue(item, filter.Field), filter); isFiltered {
			return true, reason
		}
	}
	return false, ""
}

func (f *Filterer) applyFilter(value string, filter Filter) (bool, string) {
	for _, exclude := range filter.Excludes {
		if f.matchesFilter(value, exclude) {
			return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
		}
	}

	if len(filter.Includes) > 0 {
		for _, include := range filter.Includes {
			if f.matchesFilter(value, include) {
				return false, ""
			}
		}
		return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item OutputItem, field string) string {
	switch field {
	case "title":
		return item.Title
	case "link":
		return item.Link
	case "description":
		return item.Description
	default:
		return ""
	}
}
