package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Pipeline configuration
	ConfigFile string `long:"config" short:"c" env:"CONFIG_FILE" default:"./linkfeed.yml" description:"Path to the YAML pipeline configuration"`

	// Serve mode
	Serve        bool   `long:"serve" env:"SERVE" description:"Keep running: regenerate the feed periodically and serve it over HTTP"`
	Port         string `long:"port" env:"PORT" default:"8000" description:"HTTP server port (serve mode)"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://feeds.example.com)"`
	Interval     int    `long:"interval" env:"INTERVAL" default:"3600" description:"Regeneration interval in seconds (serve mode)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the refresh endpoint (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses the process command line and environment.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", raw.Interval)
	}

	cfg := &Cfg{
		ConfigFile:   raw.ConfigFile,
		Serve:        raw.Serve,
		Port:         raw.Port,
		BaseUrl:      raw.BaseUrl,
		Interval:     raw.Interval,
		APIAccessKey: raw.APIAccessKey,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SelfLink is the public URL of the served feed, empty outside serve mode
// unless a base URL is configured.
func (c *Cfg) SelfLink() string {
	if c.BaseUrl != "" {
		return c.BaseUrl + "/feed.xml"
	}
	if c.Serve {
		return fmt.Sprintf("http://localhost:%s/feed.xml", c.Port)
	}
	return ""
}

func (c *Cfg) GetInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
