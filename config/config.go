// Package config provides configuration loading and management for
// Semexhibit.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semexhibit/vocabulary"
)

// Duration is a time.Duration that unmarshals from YAML duration strings
// such as "2s" or "500ms". Bare integers are read as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config represents the complete Semexhibit configuration. Required
// credentials and the exhibit root arrive via CLI flags and are merged
// over whatever the config file supplies.
type Config struct {
	Exhibit  ExhibitConfig  `yaml:"exhibit"`
	Omeka    OmekaConfig    `yaml:"omeka"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Services ServicesConfig `yaml:"services"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ExhibitConfig configures the source graph traversal.
type ExhibitConfig struct {
	// RootURI is the identifier of the exhibit's RDF entry point.
	RootURI string `yaml:"root_uri"`
	// Language is the target language tag for name literals.
	Language string `yaml:"language"`
	// ListingPath is the predicate path from the exhibit node to its
	// item nodes.
	ListingPath []string `yaml:"listing_path"`
}

// OmekaConfig configures the target CMS.
type OmekaConfig struct {
	// URL is the base URL of the Omeka installation to populate.
	URL string `yaml:"url"`
	// User is the admin user to log in as.
	User string `yaml:"user"`
	// Password is the admin user's password.
	Password string `yaml:"password"`
	// Timeout bounds each CMS request.
	Timeout Duration `yaml:"timeout"`
}

// FetchConfig configures graph retrieval.
type FetchConfig struct {
	// MinInterval is the global minimum gap between graph fetches.
	MinInterval Duration `yaml:"min_interval"`
	// Timeout bounds one fetch round trip.
	Timeout Duration `yaml:"timeout"`
	// MaxAttempts bounds retries of transient fetch failures.
	MaxAttempts int `yaml:"max_attempts"`
	// UserAgent is sent on every graph request.
	UserAgent string `yaml:"user_agent"`
}

// ServicesConfig configures the secondary description and raw-bytes
// services.
type ServicesConfig struct {
	// BlurbURL is the base of the text-snippet service.
	BlurbURL string `yaml:"blurb_url"`
	// RawURL is the base of the raw-bytes service.
	RawURL string `yaml:"raw_url"`
	// BlurbMaxLength bounds the requested snippet length.
	BlurbMaxLength int `yaml:"blurb_max_length"`
}

// MetricsConfig configures the optional metrics listener.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on; empty disables it.
	Listen string `yaml:"listen"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Exhibit: ExhibitConfig{
			Language:    "en",
			ListingPath: []string{vocabulary.ListedSites},
		},
		Omeka: OmekaConfig{
			Timeout: Duration(30 * time.Second),
		},
		Fetch: FetchConfig{
			MinInterval: Duration(time.Second),
			Timeout:     Duration(10 * time.Second),
			MaxAttempts: 3,
			UserAgent:   "semexhibit/0.1.0",
		},
		Services: ServicesConfig{
			BlurbURL:       vocabulary.BlurbBase,
			RawURL:         vocabulary.RawBase,
			BlurbMaxLength: 6400,
		},
	}
}

// Validate checks that the configuration is complete and coherent.
func (c *Config) Validate() error {
	if c.Exhibit.RootURI == "" {
		return fmt.Errorf("exhibit.root_uri is required")
	}
	if c.Omeka.URL == "" {
		return fmt.Errorf("omeka.url is required")
	}
	if c.Omeka.User == "" || c.Omeka.Password == "" {
		return fmt.Errorf("omeka.user and omeka.password are required")
	}
	if c.Exhibit.Language == "" {
		return fmt.Errorf("exhibit.language is required")
	}
	if len(c.Exhibit.ListingPath) == 0 {
		return fmt.Errorf("exhibit.listing_path must name at least one predicate")
	}
	if c.Fetch.MinInterval < 0 {
		return fmt.Errorf("fetch.min_interval must not be negative")
	}
	if c.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("fetch.max_attempts must be at least 1")
	}
	if c.Services.BlurbMaxLength <= 0 {
		return fmt.Errorf("services.blurb_max_length must be positive")
	}
	return nil
}

// Merge merges another config into this one; other takes precedence for
// non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Exhibit.RootURI != "" {
		c.Exhibit.RootURI = other.Exhibit.RootURI
	}
	if other.Exhibit.Language != "" {
		c.Exhibit.Language = other.Exhibit.Language
	}
	if len(other.Exhibit.ListingPath) > 0 {
		c.Exhibit.ListingPath = other.Exhibit.ListingPath
	}

	if other.Omeka.URL != "" {
		c.Omeka.URL = other.Omeka.URL
	}
	if other.Omeka.User != "" {
		c.Omeka.User = other.Omeka.User
	}
	if other.Omeka.Password != "" {
		c.Omeka.Password = other.Omeka.Password
	}
	if other.Omeka.Timeout != 0 {
		c.Omeka.Timeout = other.Omeka.Timeout
	}

	if other.Fetch.MinInterval != 0 {
		c.Fetch.MinInterval = other.Fetch.MinInterval
	}
	if other.Fetch.Timeout != 0 {
		c.Fetch.Timeout = other.Fetch.Timeout
	}
	if other.Fetch.MaxAttempts != 0 {
		c.Fetch.MaxAttempts = other.Fetch.MaxAttempts
	}
	if other.Fetch.UserAgent != "" {
		c.Fetch.UserAgent = other.Fetch.UserAgent
	}

	if other.Services.BlurbURL != "" {
		c.Services.BlurbURL = other.Services.BlurbURL
	}
	if other.Services.RawURL != "" {
		c.Services.RawURL = other.Services.RawURL
	}
	if other.Services.BlurbMaxLength != 0 {
		c.Services.BlurbMaxLength = other.Services.BlurbMaxLength
	}

	if other.Metrics.Listen != "" {
		c.Metrics.Listen = other.Metrics.Listen
	}
}

// UnmarshalInto parses YAML bytes over a default config.
func UnmarshalInto(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}
