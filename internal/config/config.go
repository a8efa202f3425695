// Package config defines the settings of the whosalive command and loads
// them from files and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/creachadair/flatjson/twitch"
)

// Config holds the settings for polling and notification.
type Config struct {
	// Channels are the login names of the channels to watch.
	Channels []string `yaml:"channels"`

	// Interval is the time between polls.
	Interval time.Duration `yaml:"interval"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// BaseURL is the streams endpoint.
	BaseURL string `yaml:"base_url"`

	// ClientID is sent in the Client-ID header of each request.
	ClientID string `yaml:"client_id"`

	// CacheDir is the directory for cached channel logos.
	CacheDir string `yaml:"cache_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// MinInterval is the shortest permitted poll interval.
const MinInterval = 5 * time.Second

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		Channels: []string{"belezogep", "handmadehero", "towelliee"},
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		BaseURL:  twitch.DefaultBaseURL,
		LogLevel: "info",
	}
	if dir, err := os.UserCacheDir(); err == nil {
		cfg.CacheDir = filepath.Join(dir, "whosalive", "logos")
	}
	return cfg
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Channels = slices.Clone(c.Channels)
	return &cp
}

var channelName = regexp.MustCompile(`^[A-Za-z0-9_]{1,25}$`)

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate reports an error describing each problem with c.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Channels) == 0 {
		errs = append(errs, errors.New("no channels to watch"))
	}
	for _, name := range c.Channels {
		if !channelName.MatchString(name) {
			errs = append(errs, fmt.Errorf("invalid channel name %q", name))
		}
	}
	if c.Interval < MinInterval {
		errs = append(errs, fmt.Errorf("interval %v is less than %v", c.Interval, MinInterval))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout %v must be positive", c.Timeout))
	}
	if u, err := url.Parse(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid base URL: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("base URL %q must be http or https", c.BaseURL))
	}
	if c.LogLevel != "" && !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// StreamsURL returns the URL to poll for the configured channels.
func (c *Config) StreamsURL() string { return twitch.StreamsURL(c.BaseURL, c.Channels) }
