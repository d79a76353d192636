package ingest

import (
	"net/http"
	"time"
)

// Config holds all pipeline configuration, injected from main.
type Config struct {
	CacheEnabled    bool
	CacheDir        string
	HoursBack       int
	FetchTimeout    time.Duration
	MaxContentChars int
	EnrichWorkers   int
	TranscriptLangs []string
	HTTPClient      *http.Client
	Browser         *BrowserClient // nil = rendered-page sources disabled
}

var cfg Config

// Cfg exposes the pipeline configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the pipeline with the given configuration.
func Init(c Config) {
	if c.CacheDir == "" {
		c.CacheDir = ".cache"
	}
	if c.HoursBack <= 0 {
		c.HoursBack = 24
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = 20000
	}
	if c.EnrichWorkers <= 0 {
		c.EnrichWorkers = 4
	}
	if len(c.TranscriptLangs) == 0 {
		c.TranscriptLangs = []string{"en"}
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	cfg = c
	Cfg = &cfg
}
