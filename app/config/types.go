package config

import "github.com/lysyi3m/link-comb/app/feed"

// PipelineConfig represents a complete link feed configuration
type PipelineConfig struct {
	Source   SourceInfo       `yaml:"source"`
	Output   OutputInfo       `yaml:"output"`
	Settings PipelineSettings `yaml:"settings"`
	Filters  []feed.Filter    `yaml:"filters"`
}

// SourceInfo identifies the newsletter feed to read
type SourceInfo struct {
	URL string `yaml:"url"`
}

// OutputInfo contains the generated feed's file path and channel metadata
type OutputInfo struct {
	Path        string `yaml:"path"`
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
}

// PipelineSettings contains crawl settings
type PipelineSettings struct {
	Timeout        *int     `yaml:"timeout"` // seconds
	Delay          *float64 `yaml:"delay"`   // seconds to wait after each link fetch, 0 disables
	UserAgent      string   `yaml:"user_agent"`
	MaxLinks       int      `yaml:"max_links"` // 0 means unlimited
	ExtractContent bool     `yaml:"extract_content"`
}
