package ingest

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the pipeline.
var metrics struct {
	FeedRequests    atomic.Int64
	RenderRequests  atomic.Int64
	CaptionRequests atomic.Int64
	EnrichErrors    atomic.Int64
	SourceFailures  atomic.Int64
}

// Cache counters live here so they survive cache enable/disable toggles.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"feed_requests":    metrics.FeedRequests.Load(),
		"render_requests":  metrics.RenderRequests.Load(),
		"caption_requests": metrics.CaptionRequests.Load(),
		"enrich_errors":    metrics.EnrichErrors.Load(),
		"source_failures":  metrics.SourceFailures.Load(),
		"cache_hits":       hits,
		"cache_misses":     misses,
	}
}

// FormatMetrics returns metrics as a simple text format.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"feed_requests", "render_requests", "caption_requests",
		"enrich_errors", "source_failures",
		"cache_hits", "cache_misses",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the sources sub-package.
func IncrFeedRequests()    { metrics.FeedRequests.Add(1) }
func IncrCaptionRequests() { metrics.CaptionRequests.Add(1) }
