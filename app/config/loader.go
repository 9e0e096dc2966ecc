package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/lysyi3m/link-comb/app/feed"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputPath  = "links_feed.xml"
	DefaultTitle       = "My Newsletter Links"
	DefaultLink        = "http://localhost:8000"
	DefaultDescription = "A curated feed of links extracted from my newsletters."
	DefaultTimeout     = 10  // seconds
	DefaultDelay       = 0.5 // seconds
	DefaultUserAgent   = "NewsletterLinkExtractor/1.0"

	// placeholderMarker appears in the sample source URL shipped with the docs.
	placeholderMarker = "xxxxxxxx"
)

// Loader handles loading and validation of the pipeline configuration
type Loader struct {
	path string
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, defaults and validates the YAML configuration file
func (l *Loader) Load() (*PipelineConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	slog.Debug("Configuration loaded", "path", l.path, "source", config.Source.URL, "output", config.Output.Path)

	return config, nil
}

// Parse decodes YAML data, then applies defaults and validates the result
func Parse(data []byte) (*PipelineConfig, error) {
	var config PipelineConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults applies default values to configuration
func setDefaults(config *PipelineConfig) {
	if config.Output.Path == "" {
		config.Output.Path = DefaultOutputPath
	}
	if config.Output.Title == "" {
		config.Output.Title = DefaultTitle
	}
	if config.Output.Link == "" {
		config.Output.Link = DefaultLink
	}
	if config.Output.Description == "" {
		config.Output.Description = DefaultDescription
	}
	if config.Settings.Timeout == nil {
		timeout := DefaultTimeout
		config.Settings.Timeout = &timeout
	}
	if config.Settings.Delay == nil {
		delay := DefaultDelay
		config.Settings.Delay = &delay
	}
	if config.Settings.UserAgent == "" {
		config.Settings.UserAgent = DefaultUserAgent
	}
}

// validate validates the configuration
func validate(config *PipelineConfig) error {
	if config.Source.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	if strings.Contains(config.Source.URL, placeholderMarker) {
		return fmt.Errorf("source URL %q is still the placeholder, replace it with your feed URL", config.Source.URL)
	}

	u, err := url.Parse(config.Source.URL)
	if err != nil {
		return fmt.Errorf("invalid source URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source URL must use http or https, got %q", u.Scheme)
	}

	if *config.Settings.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive number of seconds")
	}

	nonNegativeFields := map[string]float64{
		"delay":     *config.Settings.Delay,
		"max links": float64(config.Settings.MaxLinks),
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, filter := range config.Filters {
		if !feed.FilterFields[filter.Field] {
			return fmt.Errorf("filter %d: unknown field %q", i, filter.Field)
		}
	}

	return nil
}
