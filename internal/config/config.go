package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source is one configured content origin.
type Source struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"` // youtube | anthropic | openai | substack
	URL       string `yaml:"url,omitempty"`
	ChannelID string `yaml:"channel_id,omitempty"` // youtube only
	Enabled   bool   `yaml:"enabled"`
}

// Cache controls the on-disk content cache.
type Cache struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// Config is the file-level configuration for an ingestion run.
type Config struct {
	HoursBack       int      `yaml:"hours_back"`
	Cache           Cache    `yaml:"cache"`
	Database        string   `yaml:"database,omitempty"` // optional sqlite item store path
	FetchTimeout    string   `yaml:"fetch_timeout,omitempty"`
	EnrichWorkers   int      `yaml:"enrich_workers,omitempty"`
	TranscriptLangs []string `yaml:"transcript_langs,omitempty"`
	Sources         []Source `yaml:"sources"`
}

var sourceTypes = map[string]bool{
	"youtube":   true,
	"anthropic": true,
	"openai":    true,
	"substack":  true,
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		HoursBack: 24,
		Cache:     Cache{Enabled: true, Dir: ".cache"},
		Sources: []Source{
			{Name: "anthropic", Type: "anthropic", Enabled: true},
			{Name: "openai", Type: "openai", Enabled: true},
		},
	}
}

// Load reads and validates a YAML config file. The USE_CACHE environment
// variable, when set, overrides the file's cache flag ("1" enables).
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if v, ok := os.LookupEnv("USE_CACHE"); ok {
		c.Cache.Enabled = v == "1"
	}

	if c.HoursBack <= 0 {
		c.HoursBack = 24
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".cache"
	}
	for i, s := range c.Sources {
		if !sourceTypes[s.Type] {
			return nil, fmt.Errorf("source %d (%s): unknown type %q", i, s.Name, s.Type)
		}
		if s.Type == "youtube" && s.ChannelID == "" {
			return nil, fmt.Errorf("source %d (%s): youtube source requires channel_id", i, s.Name)
		}
		if s.Type == "substack" && s.URL == "" {
			return nil, fmt.Errorf("source %d (%s): substack source requires url", i, s.Name)
		}
	}
	return c, nil
}

// FetchTimeoutDuration parses the fetch timeout, defaulting to 30s.
func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// EnabledSources returns the sources marked enabled, in file order.
func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
